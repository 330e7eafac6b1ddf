package handlers

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the fixed catalog page size.
const PageSize = 12

var (
	ErrBadPriceRange = errors.New("price must be a numeric min-max range")
	ErrBadPage       = errors.New("page must be a positive integer")
)

// CatalogQuery is the parsed product listing query string. Absent fields
// contribute no constraint.
type CatalogQuery struct {
	Keyword  string
	Category string
	Brand    string
	Price    string
	Sort     string
	Page     int
}

// ParseCatalogQuery reads the listing parameters with their defaults.
func ParseCatalogQuery(c echo.Context) (CatalogQuery, error) {
	q := CatalogQuery{
		Keyword:  c.QueryParam("keyword"),
		Category: c.QueryParam("category"),
		Brand:    c.QueryParam("brand"),
		Price:    c.QueryParam("price"),
		Sort:     c.QueryParam("sort"),
		Page:     1,
	}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, ErrBadPage
		}
		q.Page = page
	}

	return q, nil
}

// Filter combines the active constraints with logical AND. A malformed
// price range is rejected here instead of silently matching nothing.
func (q CatalogQuery) Filter() (bson.M, error) {
	filter := bson.M{}

	if q.Keyword != "" {
		filter["name"] = bson.M{
			"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(q.Keyword), Options: "i"},
		}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Brand != "" {
		filter["brand"] = q.Brand
	}

	if q.Price != "" {
		min, max, err := parsePriceRange(q.Price)
		if err != nil {
			return nil, err
		}
		filter["price"] = bson.M{"$gte": min, "$lte": max}
	}

	return filter, nil
}

// parsePriceRange splits a "min-max" string on the first hyphen into
// inclusive numeric bounds.
func parsePriceRange(s string) (float64, float64, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, ErrBadPriceRange
	}

	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, ErrBadPriceRange
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, ErrBadPriceRange
	}

	if min > max {
		return 0, 0, ErrBadPriceRange
	}
	return min, max, nil
}

// SortSpec resolves the sort key. Unknown or absent values fall back to
// descending rating.
func (q CatalogQuery) SortSpec() bson.D {
	switch q.Sort {
	case "price-low":
		return bson.D{{Key: "price", Value: 1}}
	case "price-high":
		return bson.D{{Key: "price", Value: -1}}
	case "newest":
		return bson.D{{Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "rating", Value: -1}}
	}
}

// Skip is the page offset applied after sorting.
func (q CatalogQuery) Skip() int64 {
	return int64(q.Page-1) * PageSize
}

// Pages is the total page count for a filtered result set.
func Pages(total int64) int64 {
	return (total + PageSize - 1) / PageSize
}
