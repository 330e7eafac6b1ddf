package handlers

import (
	"context"
	"errors"
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
	"github.com/soleshop/soleshop-backend-go/utils"
)

// ProductListResponse is the paginated catalog envelope.
type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int64            `json:"pages"`
	Total    int64            `json:"total"`
}

func GetProducts(c echo.Context) error {
	query, err := ParseCatalogQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	filter, err := query.Filter()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := database.Products()

	// Count reflects the full filtered set, not the returned page.
	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		zap.L().Error("failed to count products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
	}

	opts := options.Find().
		SetSort(query.SortSpec()).
		SetSkip(query.Skip()).
		SetLimit(PageSize)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		zap.L().Error("failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		zap.L().Error("failed to decode products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
	}

	return c.JSON(http.StatusOK, ProductListResponse{
		Products: products,
		Page:     query.Page,
		Pages:    Pages(total),
		Total:    total,
	})
}

func GetProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid product ID"})
	}

	var product models.Product
	err = database.Products().FindOne(c.Request().Context(), bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found"})
		}
		zap.L().Error("failed to fetch product", zap.String("id", objID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch product"})
	}

	return c.JSON(http.StatusOK, product)
}

func CreateProduct(c echo.Context) error {
	var product models.Product
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}

	if err := validate.Struct(product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}
	if !product.Category.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Unknown product category"})
	}

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := database.Products().InsertOne(ctx, product); err != nil {
		zap.L().Error("failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to create product"})
	}

	return c.JSON(http.StatusCreated, product)
}

// UpdateProductRequest carries only the fields the admin wants to change.
// Nil fields are left untouched by the update.
type UpdateProductRequest struct {
	Name          *string               `json:"name" validate:"omitempty,min=1"`
	Brand         *string               `json:"brand" validate:"omitempty,min=1"`
	Category      *models.Category      `json:"category"`
	Description   *string               `json:"description"`
	Price         *float64              `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice *float64              `json:"originalPrice" validate:"omitempty,gte=0"`
	Stock         *int                  `json:"stock" validate:"omitempty,gte=0"`
	Images        []models.ProductImage `json:"images" validate:"omitempty,dive"`
	Sizes         []models.SizeStock    `json:"sizes" validate:"omitempty,dive"`
	Colors        []string              `json:"colors"`
	IsFeatured    *bool                 `json:"isFeatured"`
}

var ErrUnknownCategory = errors.New("unknown product category")

// Fields builds the $set document from the supplied fields only.
func (r UpdateProductRequest) Fields(now time.Time) (bson.M, error) {
	set := bson.M{"updatedAt": now}

	if r.Name != nil {
		set["name"] = *r.Name
	}
	if r.Brand != nil {
		set["brand"] = *r.Brand
	}
	if r.Category != nil {
		if !r.Category.Valid() {
			return nil, ErrUnknownCategory
		}
		set["category"] = *r.Category
	}
	if r.Description != nil {
		set["description"] = *r.Description
	}
	if r.Price != nil {
		set["price"] = *r.Price
	}
	if r.OriginalPrice != nil {
		set["originalPrice"] = *r.OriginalPrice
	}
	if r.Stock != nil {
		set["stock"] = *r.Stock
	}
	if r.Images != nil {
		set["images"] = r.Images
	}
	if r.Sizes != nil {
		set["sizes"] = r.Sizes
	}
	if r.Colors != nil {
		set["colors"] = r.Colors
	}
	if r.IsFeatured != nil {
		set["isFeatured"] = *r.IsFeatured
	}

	return set, nil
}

func UpdateProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid product ID"})
	}

	var req UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request format"})
	}

	if err := validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	set, err := req.Fields(time.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	update := bson.M{"$set": set}

	var updated models.Product
	err = database.Products().FindOneAndUpdate(
		ctx,
		bson.M{"_id": objID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found"})
		}
		zap.L().Error("failed to update product", zap.String("id", objID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update product"})
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteProduct removes the product record and best-effort cleans up its
// remote images. A failed image removal is logged and never aborts the
// product deletion.
// destroyImage is swappable in tests.
var destroyImage = utils.DeleteImage

// cleanupProductImages removes the product's remote assets best-effort.
// Every image gets a deletion attempt; individual failures are logged and
// never abort the caller's record deletion.
func cleanupProductImages(ctx context.Context, productID primitive.ObjectID, images []models.ProductImage) {
	for _, image := range images {
		publicID := utils.PublicIDFromURL(image.URL)
		if publicID == "" {
			continue
		}
		if err := destroyImage(ctx, publicID); err != nil {
			zap.L().Warn("failed to delete remote image",
				zap.String("productId", productID.Hex()),
				zap.String("publicId", publicID),
				zap.Error(err),
			)
		}
	}
}

func DeleteProduct(c echo.Context) error {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid product ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	err = database.Products().FindOne(ctx, bson.M{"_id": objID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Product not found"})
		}
		zap.L().Error("failed to fetch product for deletion", zap.String("id", objID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete product"})
	}

	cleanupProductImages(ctx, objID, product.Images)

	if _, err := database.Products().DeleteOne(ctx, bson.M{"_id": objID}); err != nil {
		zap.L().Error("failed to delete product", zap.String("id", objID.Hex()), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete product"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted"})
}

// GetFeaturedProducts returns up to 8 featured products, falling back to up
// to 4 arbitrary products when none are flagged.
func GetFeaturedProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	collection := database.Products()

	products := []models.Product{}
	cursor, err := collection.Find(ctx, bson.M{"isFeatured": true}, options.Find().SetLimit(8))
	if err != nil {
		zap.L().Error("failed to fetch featured products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
	}
	if err := cursor.All(ctx, &products); err != nil {
		zap.L().Error("failed to decode featured products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
	}

	if len(products) == 0 {
		cursor, err := collection.Find(ctx, bson.M{}, options.Find().SetLimit(4))
		if err != nil {
			zap.L().Error("failed to fetch fallback products", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
		}
		if err := cursor.All(ctx, &products); err != nil {
			zap.L().Error("failed to decode fallback products", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch products"})
		}
	}

	return c.JSON(http.StatusOK, products)
}

func GetCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	values, err := database.Products().Distinct(ctx, "category", bson.M{})
	if err != nil {
		zap.L().Error("failed to fetch categories", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to fetch categories"})
	}

	categories := []string{}
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}

	return c.JSON(http.StatusOK, categories)
}
