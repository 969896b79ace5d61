package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stackmart/storefront-backend/pkg/config"
	"github.com/stackmart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/stackmart/storefront-backend/pkg/errors"
	"github.com/stackmart/storefront-backend/pkg/pagination"
	"github.com/stackmart/storefront-backend/pkg/redis"
)

// ProductRepository defines the persistence surface the catalog service needs.
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	ListActive(ctx context.Context, filter ListFilter) ([]models.Product, error)
	AdjustStock(ctx context.Context, id int64, delta int) (bool, error)
	HasSufficientStock(ctx context.Context, id int64, required int) (bool, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}

// CategoryCache is the cache surface used for the category listing. A nil
// cache disables caching entirely.
type CategoryCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Availability is the outcome of an availability check. Reason explains the
// first failing rule; callers surface it to users verbatim.
type Availability struct {
	Available      bool        `json:"available"`
	Reason         string      `json:"reason"`
	Product        *ProductDTO `json:"product,omitempty"`
	AvailableStock int         `json:"available_stock"`
}

// ProductDetail decorates a product with derived stock indicators.
type ProductDetail struct {
	Product  ProductDTO `json:"product"`
	InStock  bool       `json:"in_stock"`
	LowStock bool       `json:"low_stock"`
}

// CreateProductInput carries the fields required to add a catalog listing.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	ImageURL    *string
	IsActive    *bool
}

// Service exposes catalog browsing and maintenance operations.
type Service interface {
	ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) ([]ProductDTO, pagination.Page, error)
	GetProductDetail(ctx context.Context, id int64) (*ProductDetail, error)
	CheckAvailability(ctx context.Context, id int64, quantity int) (*Availability, error)
	Categories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	AdjustStock(ctx context.Context, id int64, delta int) (*ProductDTO, error)
	DeactivateProduct(ctx context.Context, id int64) error
}

type service struct {
	repo              ProductRepository
	cache             CategoryCache
	lowStockThreshold int
	cacheTTL          time.Duration
}

// NewService builds a catalog service. The cache is optional; when nil,
// category reads always hit the database.
func NewService(repo ProductRepository, cache CategoryCache, cfg config.CatalogConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	threshold := cfg.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}
	ttl := cfg.CategoryCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &service{
		repo:              repo,
		cache:             cache,
		lowStockThreshold: threshold,
		cacheTTL:          ttl,
	}, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) ([]ProductDTO, pagination.Page, error) {
	rows, err := s.repo.ListActive(ctx, filter)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	page := pagination.PageFor(params, len(rows))
	start, end := params.Slice(len(rows))
	return NewProductDTOs(rows[start:end]), page, nil
}

func (s *service) GetProductDetail(ctx context.Context, id int64) (*ProductDetail, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		// Inactive products are hidden from the storefront detail page even
		// though FindByID resolves them for internal callers.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return &ProductDetail{
		Product:  *NewProductDTO(product),
		InStock:  product.InStock(),
		LowStock: product.Stock <= s.lowStockThreshold,
	}, nil
}

// CheckAvailability applies the ordered availability rules: existence, active
// flag, then stock. The ordering is load-bearing; an inactive product with
// plenty of stock must report "not active".
func (s *service) CheckAvailability(ctx context.Context, id int64, quantity int) (*Availability, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Availability{Available: false, Reason: "Product not found"}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	if !product.IsActive {
		return &Availability{
			Available: false,
			Reason:    "Product is not active",
			Product:   NewProductDTO(product),
		}, nil
	}

	if product.Stock < quantity {
		return &Availability{
			Available:      false,
			Reason:         fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", product.Stock, quantity),
			Product:        NewProductDTO(product),
			AvailableStock: product.Stock,
		}, nil
	}

	return &Availability{
		Available:      true,
		Reason:         "Product is available",
		Product:        NewProductDTO(product),
		AvailableStock: product.Stock,
	}, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, redis.CategoriesKey()); err == nil {
			var categories []string
			if err := json.Unmarshal([]byte(cached), &categories); err == nil {
				return categories, nil
			}
		}
	}

	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	if s.cache != nil {
		if payload, err := json.Marshal(categories); err == nil {
			// Cache write failures degrade to DB reads; not worth failing the request.
			_ = s.cache.Set(ctx, redis.CategoriesKey(), payload, s.cacheTTL)
		}
	}
	return categories, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    strings.TrimSpace(input.Category),
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	s.invalidateCategories(ctx)
	return NewProductDTO(created), nil
}

func (s *service) AdjustStock(ctx context.Context, id int64, delta int) (*ProductDTO, error) {
	ok, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	if !ok {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "stock adjustment would drive stock below zero")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

func (s *service) DeactivateProduct(ctx context.Context, id int64) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	s.invalidateCategories(ctx)
	return nil
}

func (s *service) invalidateCategories(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, redis.CategoriesKey())
	}
}

func validateProductInput(input CreateProductInput) error {
	var problems []string
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		problems = append(problems, "category is required")
	}
	if input.Price.IsNegative() {
		problems = append(problems, "price must be non-negative")
	}
	if input.Stock < 0 {
		problems = append(problems, "stock must be non-negative")
	}
	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product data").WithDetails(problems)
	}
	return nil
}
