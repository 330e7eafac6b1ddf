package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"versioned asset",
			"https://res.cloudinary.com/demo/image/upload/v1712345678/products/abc-123.jpg",
			"products/abc-123",
		},
		{
			"no version segment",
			"https://res.cloudinary.com/demo/image/upload/products/abc-123.png",
			"products/abc-123",
		},
		{
			"no folder",
			"https://res.cloudinary.com/demo/image/upload/v1/abc.webp",
			"abc",
		},
		{
			"no extension",
			"https://res.cloudinary.com/demo/image/upload/v1/products/abc",
			"products/abc",
		},
		{
			"foreign url",
			"https://example.com/images/shoe.jpg",
			"",
		},
		{
			"empty",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicIDFromURL(tt.url))
		})
	}
}
