package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newQueryContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestParseCatalogQueryDefaults(t *testing.T) {
	c := newQueryContext(t, "/products")

	q, err := ParseCatalogQuery(c)
	require.NoError(t, err)

	assert.Equal(t, 1, q.Page)
	assert.Empty(t, q.Keyword)
	assert.Empty(t, q.Sort)
}

func TestParseCatalogQueryPage(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		page    int
		wantErr bool
	}{
		{"explicit page", "/products?page=3", 3, false},
		{"page zero", "/products?page=0", 0, true},
		{"negative page", "/products?page=-1", 0, true},
		{"non-numeric page", "/products?page=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseCatalogQuery(newQueryContext(t, tt.target))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.page, q.Page)
		})
	}
}

func TestCatalogQueryFilterEmpty(t *testing.T) {
	filter, err := CatalogQuery{}.Filter()
	require.NoError(t, err)
	assert.Equal(t, bson.M{}, filter)
}

func TestCatalogQueryFilterCombinesWithAnd(t *testing.T) {
	q := CatalogQuery{
		Keyword:  "air max",
		Category: "Sneakers",
		Brand:    "Nike",
		Price:    "50-150",
	}

	filter, err := q.Filter()
	require.NoError(t, err)

	assert.Equal(t, "Sneakers", filter["category"])
	assert.Equal(t, "Nike", filter["brand"])
	assert.Equal(t, bson.M{"$gte": 50.0, "$lte": 150.0}, filter["price"])

	name, ok := filter["name"].(bson.M)
	require.True(t, ok)
	regex, ok := name["$regex"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "i", regex.Options)
	assert.Contains(t, regex.Pattern, "air max")
}

func TestCatalogQueryFilterEscapesRegexMeta(t *testing.T) {
	filter, err := CatalogQuery{Keyword: "a+b (c)"}.Filter()
	require.NoError(t, err)

	regex := filter["name"].(bson.M)["$regex"].(primitive.Regex)
	assert.Equal(t, `a\+b \(c\)`, regex.Pattern)
}

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		input    string
		min, max float64
		wantErr  bool
	}{
		{"50-150", 50, 150, false},
		{"0-0", 0, 0, false},
		{"10.5-20.25", 10.5, 20.25, false},
		{"100", 0, 0, true},
		{"abc-def", 0, 0, true},
		{"50-", 0, 0, true},
		{"-50", 0, 0, true},
		{"150-50", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			min, max, err := parsePriceRange(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadPriceRange)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.max, max)
		})
	}
}

func TestCatalogQueryFilterRejectsMalformedPrice(t *testing.T) {
	_, err := CatalogQuery{Price: "cheap-expensive"}.Filter()
	assert.ErrorIs(t, err, ErrBadPriceRange)
}

func TestCatalogQuerySortSpec(t *testing.T) {
	tests := []struct {
		sort string
		want bson.D
	}{
		{"price-low", bson.D{{Key: "price", Value: 1}}},
		{"price-high", bson.D{{Key: "price", Value: -1}}},
		{"newest", bson.D{{Key: "createdAt", Value: -1}}},
		{"", bson.D{{Key: "rating", Value: -1}}},
		{"bogus", bson.D{{Key: "rating", Value: -1}}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CatalogQuery{Sort: tt.sort}.SortSpec(), "sort=%q", tt.sort)
	}
}

func TestPages(t *testing.T) {
	tests := []struct {
		total int64
		pages int64
	}{
		{0, 0},
		{1, 1},
		{12, 1},
		{13, 2},
		{24, 2},
		{25, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.pages, Pages(tt.total), "total=%d", tt.total)
	}
}

func TestSkip(t *testing.T) {
	assert.Equal(t, int64(0), CatalogQuery{Page: 1}.Skip())
	assert.Equal(t, int64(12), CatalogQuery{Page: 2}.Skip())
	assert.Equal(t, int64(48), CatalogQuery{Page: 5}.Skip())
}
