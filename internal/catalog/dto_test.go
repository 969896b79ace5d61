package catalog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackmart/storefront-backend/pkg/db/models"
)

func TestNewProductDTONil(t *testing.T) {
	assert.Nil(t, NewProductDTO(nil))
}

func TestProductDTOMarshalsSnakeCase(t *testing.T) {
	url := "https://cdn.example.com/headphones.png"
	dto := NewProductDTO(&models.Product{
		ID:          7,
		Name:        "Wireless Headphones",
		Description: "Noise cancelling over-ear headphones",
		Price:       decimal.NewFromFloat(199.99),
		Stock:       25,
		Category:    "Electronics",
		ImageURL:    &url,
		IsActive:    true,
	})

	raw, err := json.Marshal(dto)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, float64(7), decoded["id"])
	assert.Equal(t, url, decoded["image_url"])
	assert.Equal(t, true, decoded["is_active"])
	assert.NotContains(t, decoded, "ID")
	assert.NotContains(t, decoded, "ImageURL")
}
