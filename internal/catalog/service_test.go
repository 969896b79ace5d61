package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stackmart/storefront-backend/pkg/config"
	"github.com/stackmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/stackmart/storefront-backend/pkg/errors"
	"github.com/stackmart/storefront-backend/pkg/pagination"
	"github.com/stackmart/storefront-backend/pkg/redis"
)

type stubProductRepo struct {
	products   map[int64]*models.Product
	categories []string
	listErr    error
	adjustOK   bool
	deleted    []int64
}

func (s *stubProductRepo) FindByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *stubProductRepo) ListActive(_ context.Context, _ ListFilter) ([]models.Product, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var rows []models.Product
	for _, p := range s.products {
		if p.IsActive {
			rows = append(rows, *p)
		}
	}
	return rows, nil
}

func (s *stubProductRepo) AdjustStock(_ context.Context, id int64, delta int) (bool, error) {
	p, ok := s.products[id]
	if !ok || p.Stock+delta < 0 {
		return false, nil
	}
	p.Stock += delta
	return true, nil
}

func (s *stubProductRepo) HasSufficientStock(_ context.Context, id int64, required int) (bool, error) {
	p, ok := s.products[id]
	return ok && p.Stock >= required, nil
}

func (s *stubProductRepo) SoftDelete(_ context.Context, id int64) (bool, error) {
	p, ok := s.products[id]
	if !ok {
		return false, nil
	}
	p.IsActive = false
	s.deleted = append(s.deleted, id)
	return true, nil
}

func (s *stubProductRepo) Create(_ context.Context, product *models.Product) (*models.Product, error) {
	product.ID = int64(len(s.products) + 1)
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductRepo) DistinctCategories(_ context.Context) ([]string, error) {
	return s.categories, nil
}

type stubCache struct {
	values map[string]string
	sets   int
	dels   int
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string]string{}}
}

func (c *stubCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", redis.ErrCacheMiss
	}
	return v, nil
}

func (c *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	switch v := value.(type) {
	case []byte:
		c.values[key] = string(v)
	case string:
		c.values[key] = v
	}
	c.sets++
	return nil
}

func (c *stubCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	c.dels++
	return nil
}

func newCatalogService(t *testing.T, repo *stubProductRepo, cache *stubCache) Service {
	t.Helper()

	var c CategoryCache
	if cache != nil {
		c = cache
	}
	svc, err := NewService(repo, c, config.CatalogConfig{LowStockThreshold: 5, CategoryCacheTTL: time.Minute})
	require.NoError(t, err)
	return svc
}

func activeProduct(id int64, stock int) *models.Product {
	return &models.Product{
		ID:          id,
		Name:        "Laptop Gaming",
		Description: "High-end gaming laptop",
		Price:       decimal.NewFromFloat(1299.99),
		Stock:       stock,
		Category:    "Electronics",
		IsActive:    true,
	}
}

func TestCheckAvailabilityNotFound(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{}}
	svc := newCatalogService(t, repo, nil)

	avail, err := svc.CheckAvailability(context.Background(), 99, 1)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, "Product not found", avail.Reason)
	assert.Nil(t, avail.Product)
}

func TestCheckAvailabilityInactiveBeforeStock(t *testing.T) {
	inactive := activeProduct(1, 50)
	inactive.IsActive = false
	repo := &stubProductRepo{products: map[int64]*models.Product{1: inactive}}
	svc := newCatalogService(t, repo, nil)

	// Plenty of stock, but the active check fires first.
	avail, err := svc.CheckAvailability(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, "Product is not active", avail.Reason)
	require.NotNil(t, avail.Product)
}

func TestCheckAvailabilityInsufficientStock(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{1: activeProduct(1, 3)}}
	svc := newCatalogService(t, repo, nil)

	avail, err := svc.CheckAvailability(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, "Insufficient stock. Available: 3, Requested: 5", avail.Reason)
	assert.Equal(t, 3, avail.AvailableStock)
}

func TestCheckAvailabilityOK(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{1: activeProduct(1, 10)}}
	svc := newCatalogService(t, repo, nil)

	avail, err := svc.CheckAvailability(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.True(t, avail.Available)
	assert.Equal(t, "Product is available", avail.Reason)
	assert.Equal(t, 10, avail.AvailableStock)
}

func TestCheckAvailabilityRejectsNonPositiveQuantity(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{1: activeProduct(1, 10)}}
	svc := newCatalogService(t, repo, nil)

	_, err := svc.CheckAvailability(context.Background(), 1, 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetProductDetailHidesInactive(t *testing.T) {
	inactive := activeProduct(1, 10)
	inactive.IsActive = false
	repo := &stubProductRepo{products: map[int64]*models.Product{1: inactive}}
	svc := newCatalogService(t, repo, nil)

	_, err := svc.GetProductDetail(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetProductDetailLowStockFlag(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{1: activeProduct(1, 3)}}
	svc := newCatalogService(t, repo, nil)

	detail, err := svc.GetProductDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, detail.InStock)
	assert.True(t, detail.LowStock)
}

func TestCategoriesCacheAside(t *testing.T) {
	repo := &stubProductRepo{
		products:   map[int64]*models.Product{},
		categories: []string{"Electronics", "Sports"},
	}
	cache := newStubCache()
	svc := newCatalogService(t, repo, cache)
	ctx := context.Background()

	first, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Sports"}, first)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from the cache even after the source changes.
	repo.categories = []string{"Changed"}
	second, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Sports"}, second)
}

func TestCreateProductInvalidatesCategoryCache(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{}, categories: []string{"Electronics"}}
	cache := newStubCache()
	svc := newCatalogService(t, repo, cache)
	ctx := context.Background()

	_, err := svc.Categories(ctx)
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Name:        "Smartphone",
		Description: "Latest model",
		Price:       decimal.NewFromFloat(799.99),
		Stock:       20,
		Category:    "Electronics",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.dels)
	assert.Empty(t, cache.values)
}

func TestCreateProductCollectsValidationProblems(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{}}
	svc := newCatalogService(t, repo, nil)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Price: decimal.NewFromInt(-1),
		Stock: -2,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Len(t, appErr.Details(), 5)
}

func TestAdjustStockServiceDistinguishesMissingFromConflict(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{1: activeProduct(1, 5)}}
	svc := newCatalogService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, 99, 3)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.AdjustStock(ctx, 1, -10)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	product, err := svc.AdjustStock(ctx, 1, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, product.Stock)
}

func TestDeactivateProduct(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{1: activeProduct(1, 5)}}
	svc := newCatalogService(t, repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeactivateProduct(ctx, 1))
	assert.False(t, repo.products[1].IsActive)

	err := svc.DeactivateProduct(ctx, 99)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListProductsPaginates(t *testing.T) {
	repo := &stubProductRepo{products: map[int64]*models.Product{
		1: activeProduct(1, 5),
		2: activeProduct(2, 5),
		3: activeProduct(3, 5),
	}}
	svc := newCatalogService(t, repo, nil)

	rows, page, err := svc.ListProducts(context.Background(), ListFilter{}, pagination.Params{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)
}
