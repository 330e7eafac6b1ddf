package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/soleshop/soleshop-backend-go/models"
)

func TestPriceTotalsMatch(t *testing.T) {
	tests := []struct {
		name                        string
		items, tax, shipping, total float64
		want                        bool
	}{
		{"exact", 100, 10, 5, 115, true},
		{"within tolerance", 100, 10, 5, 115.009, true},
		{"above tolerance", 100, 10, 5, 115.02, false},
		{"client undercharge", 100, 10, 5, 100, false},
		{"zero order", 0, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, priceTotalsMatch(tt.items, tt.tax, tt.shipping, tt.total))
		})
	}
}

func TestPrimaryImageURL(t *testing.T) {
	images := []models.ProductImage{
		{URL: "https://cdn.example/a.jpg"},
		{URL: "https://cdn.example/b.jpg", IsPrimary: true},
	}
	assert.Equal(t, "https://cdn.example/b.jpg", primaryImageURL(images))

	noPrimary := []models.ProductImage{
		{URL: "https://cdn.example/a.jpg"},
		{URL: "https://cdn.example/b.jpg"},
	}
	assert.Equal(t, "https://cdn.example/a.jpg", primaryImageURL(noPrimary))

	assert.Equal(t, "", primaryImageURL(nil))
}

func validOrderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		OrderItems: []models.OrderItem{
			{Product: primitive.NewObjectID(), Quantity: 2},
		},
		ShippingAddress: models.ShippingAddress{
			FullName:   "Dana Smith",
			Address:    "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		ItemsPrice: 100,
		TaxPrice:   10,
		TotalPrice: 110,
	}
}

func TestCreateOrderRequestValidation(t *testing.T) {
	assert.NoError(t, validate.Struct(validOrderRequest()))

	empty := validOrderRequest()
	empty.OrderItems = nil
	assert.Error(t, validate.Struct(empty), "empty item list must be rejected")

	zeroQty := validOrderRequest()
	zeroQty.OrderItems[0].Quantity = 0
	assert.Error(t, validate.Struct(zeroQty))

	noCity := validOrderRequest()
	noCity.ShippingAddress.City = ""
	assert.Error(t, validate.Struct(noCity))

	negativeTax := validOrderRequest()
	negativeTax.TaxPrice = -1
	assert.Error(t, validate.Struct(negativeTax))
}

func TestOrderUserIDs(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	orders := []models.Order{{User: a}, {User: b}, {User: a}}
	ids := orderUserIDs(orders)

	assert.Equal(t, []primitive.ObjectID{a, b}, ids)
	assert.Empty(t, orderUserIDs(nil))
}

func TestCreateOrderRejectsEmptyItemList(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"orderItems": []}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("userID", primitive.NewObjectID())

	require.NoError(t, CreateOrder(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["message"], "at least one item")
}
