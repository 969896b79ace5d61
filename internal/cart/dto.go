package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stackmart/storefront-backend/internal/catalog"
	"github.com/stackmart/storefront-backend/pkg/db/models"
)

// CartDTO represents the cart payload returned to clients.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   *string         `json:"owner_id,omitempty"`
	Items     []CartItemDTO   `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	Stats     CartStatsDTO    `json:"stats"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CartStatsDTO summarizes the cart contents for storefront widgets.
type CartStatsDTO struct {
	TotalItems     int             `json:"total_items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	UniqueProducts int             `json:"unique_products"`
	IsEmpty        bool            `json:"is_empty"`
}

// CartItemDTO represents a single line item with its live product.
type CartItemDTO struct {
	ID        int64               `json:"id"`
	ProductID int64               `json:"product_id"`
	Quantity  int                 `json:"quantity"`
	Product   *catalog.ProductDTO `json:"product,omitempty"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
}

// NewCartDTO builds a DTO from the persisted cart. Items must be preloaded
// with their products for totals and subtotals to resolve.
func NewCartDTO(cart *models.Cart) *CartDTO {
	if cart == nil {
		return nil
	}

	items := make([]CartItemDTO, 0, len(cart.Items))
	for i := range cart.Items {
		item := &cart.Items[i]
		items = append(items, CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Product:   catalog.NewProductDTO(item.Product),
			Subtotal:  item.Subtotal(),
		})
	}

	total := cart.Total()
	return &CartDTO{
		ID:        cart.ID,
		OwnerID:   cart.OwnerID,
		Items:     items,
		Total:     total,
		ItemCount: cart.ItemCount(),
		Stats: CartStatsDTO{
			TotalItems:     cart.ItemCount(),
			TotalAmount:    total,
			UniqueProducts: len(cart.Items),
			IsEmpty:        cart.IsEmpty(),
		},
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
}
