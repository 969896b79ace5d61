package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	cartsvc "github.com/stackmart/storefront-backend/internal/cart"
	"github.com/stackmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/stackmart/storefront-backend/pkg/errors"
)

type cartLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

// Issue describes a single checkout blocker on one line item.
type Issue struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Issue       string `json:"issue"`
}

// Report is the full validation outcome for a cart. Issues holds every
// blocker found, not just the first, so the user can fix the cart in one pass.
type Report struct {
	Valid   bool             `json:"valid"`
	Message string           `json:"message"`
	Issues  []Issue          `json:"issues"`
	Cart    *cartsvc.CartDTO `json:"cart,omitempty"`
}

// Service validates carts for checkout.
type Service interface {
	Validate(ctx context.Context, cartID uuid.UUID) (*Report, error)
}

type service struct {
	carts    cartLoader
	products productLoader
}

// NewService builds a checkout validator over the cart and product stores.
func NewService(carts cartLoader, products productLoader) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{carts: carts, products: products}, nil
}

// Validate re-checks every line item against the live catalog. Products are
// reloaded rather than trusted from the preloaded cart so the report reflects
// deactivations and stock movement since the items were added. A missing or
// empty cart yields an invalid report, not an error.
func (s *service) Validate(ctx context.Context, cartID uuid.UUID) (*Report, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Report{Valid: false, Message: "Cart not found", Issues: []Issue{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if cart.IsEmpty() {
		return &Report{Valid: false, Message: "Cart is empty", Issues: []Issue{}, Cart: cartsvc.NewCartDTO(cart)}, nil
	}

	issues := []Issue{}
	for i := range cart.Items {
		item := &cart.Items[i]

		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			product = nil
		}

		name := productName(item, product)

		// Availability trumps stock: a deactivated product reports exactly one
		// issue even when its stock also falls short.
		if product == nil || !product.IsActive {
			issues = append(issues, Issue{
				ProductID:   item.ProductID,
				ProductName: name,
				Issue:       "Product is no longer available",
			})
			continue
		}

		if product.Stock < item.Quantity {
			issues = append(issues, Issue{
				ProductID:   item.ProductID,
				ProductName: name,
				Issue:       fmt.Sprintf("Insufficient stock. Requested: %d, Available: %d", item.Quantity, product.Stock),
			})
		}
	}

	report := &Report{
		Valid:  len(issues) == 0,
		Issues: issues,
		Cart:   cartsvc.NewCartDTO(cart),
	}
	if report.Valid {
		report.Message = "Cart is valid for checkout"
	} else {
		report.Message = "Cart has validation issues"
	}
	return report, nil
}

func productName(item *models.CartItem, product *models.Product) string {
	if product != nil {
		return product.Name
	}
	if item.Product != nil {
		return item.Product.Name
	}
	return ""
}
