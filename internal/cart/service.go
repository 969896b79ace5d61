package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackmart/storefront-backend/internal/catalog"
	"github.com/stackmart/storefront-backend/pkg/db"
	"github.com/stackmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/stackmart/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type availabilityChecker interface {
	CheckAvailability(ctx context.Context, productID int64, quantity int) (*catalog.Availability, error)
}

type stockChecker interface {
	HasSufficientStock(ctx context.Context, productID int64, required int) (bool, error)
}

// Service applies cart mutations under the catalog's availability rules.
//
// Cart operations never reserve or decrement stock; availability is consulted
// live at mutation time and again at checkout validation. Two concurrent adds
// can therefore both pass the stock check — closing that race needs a
// serialization point this layer does not provide.
type Service interface {
	GetOrCreate(ctx context.Context, cartID *uuid.UUID, ownerID *string) (*models.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
	AddProduct(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (*models.Cart, error)
	RemoveProduct(ctx context.Context, cartID uuid.UUID, productID int64) (*models.Cart, error)
	Clear(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo         CartRepository
	tx           txRunner
	availability availabilityChecker
	stock        stockChecker
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, availability availabilityChecker, stock stockChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if availability == nil {
		return nil, fmt.Errorf("availability checker required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock checker required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		availability: availability,
		stock:        stock,
	}, nil
}

// GetOrCreate resolves an existing cart by id, then by owner, and finally
// creates a new one. This is the only code path that creates carts; mutation
// operations require the cart to already exist.
func (s *service) GetOrCreate(ctx context.Context, cartID *uuid.UUID, ownerID *string) (*models.Cart, error) {
	if cartID != nil && *cartID != uuid.Nil {
		cart, err := s.repo.FindByID(ctx, *cartID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
	}

	if ownerID != nil && *ownerID != "" {
		cart, err := s.repo.FindByOwner(ctx, *ownerID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart by owner")
		}
	}

	created, err := s.repo.Create(ctx, &models.Cart{OwnerID: ownerID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) GetCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	return s.loadCart(ctx, cartID)
}

// AddProduct merges quantity into the cart's line item for the product, or
// appends a new line item. The stock re-check covers the quantity the cart
// already holds, not just the delta, because nothing is reserved at add time.
func (s *service) AddProduct(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	avail, err := s.availability.CheckAvailability(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		return nil, availabilityError(avail)
	}

	existing, err := s.findItem(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		requested := existing.Quantity + quantity
		ok, err := s.stock.HasSufficientStock(ctx, productID, requested)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check stock")
		}
		if !ok {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict,
				"Insufficient stock. Available: %d, Requested: %d", avail.AvailableStock, requested)
		}
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if existing != nil {
			return txRepo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+quantity)
		}
		return txRepo.CreateItem(ctx, &models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
		})
	}); err != nil {
		// A concurrent add for the same product hits the unique cart/product index.
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart item was added concurrently, retry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart item")
	}

	return s.loadCart(ctx, cartID)
}

// UpdateQuantity overwrites a line item's quantity. A non-positive quantity
// removes the line item. Only add creates line items; updating a product the
// cart does not hold fails.
func (s *service) UpdateQuantity(ctx context.Context, cartID uuid.UUID, productID int64, quantity int) (*models.Cart, error) {
	if _, err := s.loadCart(ctx, cartID); err != nil {
		return nil, err
	}

	existing, err := s.findItem(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found in cart")
	}

	if quantity <= 0 {
		if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.repo.WithTx(tx).DeleteItem(ctx, cartID, productID)
			return err
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
		}
		return s.loadCart(ctx, cartID)
	}

	// The absolute target quantity is validated, not the delta.
	avail, err := s.availability.CheckAvailability(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if !avail.Available {
		return nil, availabilityError(avail)
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).UpdateItemQuantity(ctx, existing.ID, quantity)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}

	return s.loadCart(ctx, cartID)
}

func (s *service) RemoveProduct(ctx context.Context, cartID uuid.UUID, productID int64) (*models.Cart, error) {
	if _, err := s.loadCart(ctx, cartID); err != nil {
		return nil, err
	}

	var removed bool
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		removed, err = s.repo.WithTx(tx).DeleteItem(ctx, cartID, productID)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found in cart")
	}

	return s.loadCart(ctx, cartID)
}

func (s *service) Clear(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	if _, err := s.loadCart(ctx, cartID); err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ClearItems(ctx, cartID)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}

	return s.loadCart(ctx, cartID)
}

func (s *service) loadCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) findItem(ctx context.Context, cartID uuid.UUID, productID int64) (*models.CartItem, error) {
	item, err := s.repo.GetItem(ctx, cartID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	return item, nil
}

// availabilityError translates a failed availability outcome into the error
// taxonomy: missing products are not-found, inactive products are validation
// failures, and stock shortfalls are conflicts.
func availabilityError(avail *catalog.Availability) error {
	switch {
	case avail.Product == nil:
		return pkgerrors.New(pkgerrors.CodeNotFound, avail.Reason)
	case !avail.Product.IsActive:
		return pkgerrors.New(pkgerrors.CodeValidation, avail.Reason)
	default:
		return pkgerrors.New(pkgerrors.CodeConflict, avail.Reason)
	}
}
