package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategorySneakers   Category = "Sneakers"
	CategoryRunning    Category = "Running"
	CategoryBasketball Category = "Basketball"
	CategoryCasual     Category = "Casual"
	CategoryFormal     Category = "Formal"
	CategorySandals    Category = "Sandals"
	CategoryBoots      Category = "Boots"
)

var Categories = []Category{
	CategorySneakers,
	CategoryRunning,
	CategoryBasketball,
	CategoryCasual,
	CategoryFormal,
	CategorySandals,
	CategoryBoots,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type ProductImage struct {
	URL       string `bson:"url" json:"url" validate:"required"`
	Alt       string `bson:"alt" json:"alt"`
	IsPrimary bool   `bson:"isPrimary" json:"isPrimary"`
}

type SizeStock struct {
	Size     string `bson:"size" json:"size" validate:"required"`
	Quantity int    `bson:"quantity" json:"quantity" validate:"gte=0"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name" validate:"required"`
	Brand         string             `bson:"brand" json:"brand" validate:"required"`
	Category      Category           `bson:"category" json:"category" validate:"required"`
	Description   string             `bson:"description" json:"description"`
	Price         float64            `bson:"price" json:"price" validate:"gte=0"`
	OriginalPrice float64            `bson:"originalPrice" json:"originalPrice" validate:"gte=0"`
	Stock         int                `bson:"stock" json:"stock" validate:"gte=0"`
	Images        []ProductImage     `bson:"images" json:"images" validate:"dive"`
	Sizes         []SizeStock        `bson:"sizes" json:"sizes" validate:"dive"`
	Colors        []string           `bson:"colors" json:"colors"`
	Rating        float64            `bson:"rating" json:"rating"`
	NumReviews    int                `bson:"numReviews" json:"numReviews"`
	IsFeatured    bool               `bson:"isFeatured" json:"isFeatured"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
