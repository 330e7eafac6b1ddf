package handlers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/soleshop/soleshop-backend-go/database"
	"github.com/soleshop/soleshop-backend-go/models"
)

type CreateOrderRequest struct {
	OrderItems      []models.OrderItem     `json:"orderItems" validate:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ItemsPrice      float64                `json:"itemsPrice" validate:"gte=0"`
	TaxPrice        float64                `json:"taxPrice" validate:"gte=0"`
	ShippingPrice   float64                `json:"shippingPrice" validate:"gte=0"`
	TotalPrice      float64                `json:"totalPrice" validate:"gte=0"`
}

// priceTolerance absorbs float rounding when cross-checking client totals.
const priceTolerance = 0.01

func priceTotalsMatch(itemsPrice, taxPrice, shippingPrice, claimedTotal float64) bool {
	return math.Abs(itemsPrice+taxPrice+shippingPrice-claimedTotal) <= priceTolerance
}

// primaryImageURL picks the image flagged primary, else the first one.
func primaryImageURL(images []models.ProductImage) string {
	for _, img := range images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}

// CreateOrder persists a new order for the calling user. Line items are
// snapshotted from the authoritative product records, and the client's
// claimed total is cross-checked against the recomputed item sum.
func CreateOrder(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
	}

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}

	if len(req.OrderItems) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Order must contain at least one item"})
	}
	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	productsCollection := database.Products()

	itemsPrice := 0.0
	orderItems := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		var product models.Product
		err := productsCollection.FindOne(ctx, bson.M{"_id": item.Product}).Decode(&product)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return c.JSON(http.StatusBadRequest, map[string]string{
					"message": fmt.Sprintf("Unknown product %s", item.Product.Hex()),
				})
			}
			zap.L().Error("failed to fetch product for order", zap.String("productId", item.Product.Hex()), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create order"})
		}

		itemsPrice += product.Price * float64(item.Quantity)

		orderItems = append(orderItems, models.OrderItem{
			Name:     product.Name,
			Quantity: item.Quantity,
			Image:    primaryImageURL(product.Images),
			Price:    product.Price,
			Product:  product.ID,
			Size:     item.Size,
			Color:    item.Color,
		})
	}

	if !priceTotalsMatch(itemsPrice, req.TaxPrice, req.ShippingPrice, req.TotalPrice) {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Order total does not match item prices"})
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.DefaultPaymentMethod
	}

	order := models.Order{
		ID:              primitive.NewObjectID(),
		User:            userID,
		OrderItems:      orderItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   paymentMethod,
		ItemsPrice:      itemsPrice,
		TaxPrice:        req.TaxPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
		OrderStatus:     models.OrderStatusProcessing,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if _, err := database.Orders().InsertOne(ctx, order); err != nil {
		zap.L().Error("failed to create order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create order"})
	}

	return c.JSON(http.StatusCreated, order)
}

func GetMyOrders(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.Orders().Find(
		ctx,
		bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		zap.L().Error("failed to list user orders", zap.String("userId", userID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch orders"})
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		zap.L().Error("failed to decode user orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch orders"})
	}

	return c.JSON(http.StatusOK, orders)
}

// OrderUser is the populated subset of the owning user.
type OrderUser struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// PopulatedOrder carries the order with the user reference expanded.
type PopulatedOrder struct {
	models.Order
	User OrderUser `json:"user"`
}

func GetOrderByID(c echo.Context) error {
	userID, ok := c.Get("userID").(primitive.ObjectID)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
	}
	isAdmin, _ := c.Get("isAdmin").(bool)

	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid order ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = database.Orders().FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Order not found"})
		}
		zap.L().Error("failed to fetch order", zap.String("id", orderID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch order"})
	}

	if order.User != userID && !isAdmin {
		return c.JSON(http.StatusForbidden, map[string]string{"message": "Not authorized to view this order"})
	}

	var user models.User
	if err := database.Users().FindOne(ctx, bson.M{"_id": order.User}).Decode(&user); err != nil && err != mongo.ErrNoDocuments {
		zap.L().Error("failed to fetch order user", zap.String("userId", order.User.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch order"})
	}

	return c.JSON(http.StatusOK, PopulatedOrder{
		Order: order,
		User:  OrderUser{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func GetAllOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	cursor, err := database.Orders().Find(
		ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		zap.L().Error("failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch orders"})
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		zap.L().Error("failed to decode orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch orders"})
	}

	users, err := usersByID(ctx, orderUserIDs(orders))
	if err != nil {
		zap.L().Error("failed to fetch order users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch orders"})
	}

	populated := make([]PopulatedOrder, 0, len(orders))
	for _, order := range orders {
		user := users[order.User]
		populated = append(populated, PopulatedOrder{
			Order: order,
			User:  OrderUser{ID: user.ID, Name: user.Name, Email: user.Email},
		})
	}

	return c.JSON(http.StatusOK, populated)
}

// orderUserIDs collects the distinct user references of a batch of orders.
func orderUserIDs(orders []models.Order) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(orders))
	ids := make([]primitive.ObjectID, 0, len(orders))
	for _, order := range orders {
		if !seen[order.User] {
			seen[order.User] = true
			ids = append(ids, order.User)
		}
	}
	return ids
}

func usersByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	users := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cursor, err := database.Users().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var list []models.User
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	for _, u := range list {
		users[u.ID] = u
	}
	return users, nil
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// UpdateOrderStatus overwrites the order status with any of the enumerated
// values, regardless of the current state, and applies the per-status
// delivery side effects.
func UpdateOrderStatus(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid order ID"})
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}
	if !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Unknown order status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var updated models.Order
	err = database.Orders().FindOneAndUpdate(
		ctx,
		bson.M{"_id": orderID},
		req.Status.UpdateDoc(time.Now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Order not found"})
		}
		zap.L().Error("failed to update order status", zap.String("id", orderID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update order"})
	}

	return c.JSON(http.StatusOK, updated)
}

func DeleteOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid order ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	result, err := database.Orders().DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		zap.L().Error("failed to delete order", zap.String("id", orderID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete order"})
	}
	if result.DeletedCount == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Order not found"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Order deleted"})
}
