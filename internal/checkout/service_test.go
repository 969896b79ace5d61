package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stackmart/storefront-backend/pkg/db/models"
)

type stubCartStore struct {
	carts map[uuid.UUID]*models.Cart
}

func (s *stubCartStore) FindByID(_ context.Context, id uuid.UUID) (*models.Cart, error) {
	cart, ok := s.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cart, nil
}

type stubProductStore struct {
	products map[int64]*models.Product
}

func (s *stubProductStore) FindByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func product(id int64, name string, stock int, active bool) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.NewFromFloat(9.99),
		Stock:    stock,
		Category: "Electronics",
		IsActive: active,
	}
}

func newValidator(t *testing.T, carts *stubCartStore, products *stubProductStore) Service {
	t.Helper()

	svc, err := NewService(carts, products)
	require.NoError(t, err)
	return svc
}

func TestValidateCartNotFound(t *testing.T) {
	svc := newValidator(t, &stubCartStore{carts: map[uuid.UUID]*models.Cart{}}, &stubProductStore{})

	report, err := svc.Validate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, "Cart not found", report.Message)
	assert.Empty(t, report.Issues)
	assert.Nil(t, report.Cart)
}

func TestValidateEmptyCart(t *testing.T) {
	id := uuid.New()
	carts := &stubCartStore{carts: map[uuid.UUID]*models.Cart{id: {ID: id}}}
	svc := newValidator(t, carts, &stubProductStore{})

	report, err := svc.Validate(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, "Cart is empty", report.Message)
	assert.Empty(t, report.Issues)
	require.NotNil(t, report.Cart)
}

func TestValidateHealthyCart(t *testing.T) {
	id := uuid.New()
	laptop := product(1, "Laptop Gaming", 10, true)
	carts := &stubCartStore{carts: map[uuid.UUID]*models.Cart{id: {
		ID: id,
		Items: []models.CartItem{
			{CartID: id, ProductID: 1, Quantity: 2, Product: laptop},
		},
	}}}
	products := &stubProductStore{products: map[int64]*models.Product{1: laptop}}
	svc := newValidator(t, carts, products)

	report, err := svc.Validate(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Equal(t, "Cart is valid for checkout", report.Message)
	assert.Empty(t, report.Issues)
}

func TestValidateDeactivatedProductReportsSingleIssue(t *testing.T) {
	id := uuid.New()
	// Deactivated AND short on stock: availability wins, one issue only.
	retired := product(1, "Retired Lamp", 0, false)
	carts := &stubCartStore{carts: map[uuid.UUID]*models.Cart{id: {
		ID: id,
		Items: []models.CartItem{
			{CartID: id, ProductID: 1, Quantity: 3, Product: retired},
		},
	}}}
	products := &stubProductStore{products: map[int64]*models.Product{1: retired}}
	svc := newValidator(t, carts, products)

	report, err := svc.Validate(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, "Cart has validation issues", report.Message)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "Product is no longer available", report.Issues[0].Issue)
	assert.Equal(t, "Retired Lamp", report.Issues[0].ProductName)
}

func TestValidateCollectsEveryIssue(t *testing.T) {
	id := uuid.New()
	laptop := product(1, "Laptop Gaming", 1, true)
	retired := product(2, "Retired Lamp", 50, false)
	shoes := product(3, "Running Shoes", 30, true)
	carts := &stubCartStore{carts: map[uuid.UUID]*models.Cart{id: {
		ID: id,
		Items: []models.CartItem{
			{CartID: id, ProductID: 1, Quantity: 5, Product: laptop},
			{CartID: id, ProductID: 2, Quantity: 1, Product: retired},
			{CartID: id, ProductID: 3, Quantity: 2, Product: shoes},
			{CartID: id, ProductID: 4, Quantity: 1},
		},
	}}}
	products := &stubProductStore{products: map[int64]*models.Product{1: laptop, 2: retired, 3: shoes}}
	svc := newValidator(t, carts, products)

	report, err := svc.Validate(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	require.Len(t, report.Issues, 3)

	assert.Equal(t, int64(1), report.Issues[0].ProductID)
	assert.Equal(t, "Insufficient stock. Requested: 5, Available: 1", report.Issues[0].Issue)
	assert.Equal(t, int64(2), report.Issues[1].ProductID)
	assert.Equal(t, "Product is no longer available", report.Issues[1].Issue)
	assert.Equal(t, int64(4), report.Issues[2].ProductID)
	assert.Equal(t, "Product is no longer available", report.Issues[2].Issue)
}
