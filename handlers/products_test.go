package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/soleshop/soleshop-backend-go/models"
)

func TestUpdateProductRequestPartialBody(t *testing.T) {
	var req UpdateProductRequest
	require.NoError(t, json.Unmarshal([]byte(`{"price": 99.5}`), &req))
	require.NoError(t, validate.Struct(req))

	now := time.Now()
	set, err := req.Fields(now)
	require.NoError(t, err)

	assert.Equal(t, 99.5, set["price"])
	assert.Equal(t, now, set["updatedAt"])
	assert.Len(t, set, 2, "omitted fields must not be written")
}

func TestUpdateProductRequestFields(t *testing.T) {
	name := "Air Court Mid"
	stock := 0
	featured := false
	category := models.CategoryRunning

	req := UpdateProductRequest{
		Name:       &name,
		Stock:      &stock,
		IsFeatured: &featured,
		Category:   &category,
		Colors:     []string{"white"},
	}

	set, err := req.Fields(time.Now())
	require.NoError(t, err)

	assert.Equal(t, "Air Court Mid", set["name"])
	assert.Equal(t, 0, set["stock"])
	assert.Equal(t, false, set["isFeatured"])
	assert.Equal(t, models.CategoryRunning, set["category"])
	assert.Equal(t, []string{"white"}, set["colors"])

	assert.NotContains(t, set, "price")
	assert.NotContains(t, set, "brand")
	assert.NotContains(t, set, "images")
}

func TestUpdateProductRequestRejectsUnknownCategory(t *testing.T) {
	bad := models.Category("Slippers")
	req := UpdateProductRequest{Category: &bad}

	_, err := req.Fields(time.Now())
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCleanupProductImagesAttemptsEveryDeletion(t *testing.T) {
	original := destroyImage
	defer func() { destroyImage = original }()

	var attempted []string
	destroyImage = func(ctx context.Context, publicID string) error {
		attempted = append(attempted, publicID)
		if len(attempted) == 2 {
			return errors.New("asset service unavailable")
		}
		return nil
	}

	images := []models.ProductImage{
		{URL: "https://res.cloudinary.com/demo/image/upload/v1700000000/products/a.png"},
		{URL: "https://res.cloudinary.com/demo/image/upload/v1700000000/products/b.png"},
		{URL: "https://res.cloudinary.com/demo/image/upload/v1700000000/products/c.png"},
	}

	cleanupProductImages(context.Background(), primitive.NewObjectID(), images)

	assert.Equal(t, []string{"products/a", "products/b", "products/c"}, attempted,
		"a failed deletion must not stop the remaining attempts")
}

func TestCleanupProductImagesSkipsForeignURLs(t *testing.T) {
	original := destroyImage
	defer func() { destroyImage = original }()

	var attempts int
	destroyImage = func(ctx context.Context, publicID string) error {
		attempts++
		return nil
	}

	images := []models.ProductImage{
		{URL: "https://cdn.example.com/static/shoe.png"},
	}

	cleanupProductImages(context.Background(), primitive.NewObjectID(), images)
	assert.Zero(t, attempts)
}
