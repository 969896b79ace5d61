package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/stackmart/storefront-backend/pkg/db/models"
)

// ListFilter narrows active-product listings. Search takes precedence over
// category when both are set.
type ListFilter struct {
	Category string
	Search   string
}

// Repository exposes persistence operations for the product catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a product by id regardless of its active flag, so callers can
// explain why a historical cart reference is no longer purchasable.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListActive returns active products in stable catalog order. The search filter
// matches name or description case-insensitively; the category filter is a
// case-insensitive exact match.
func (r *Repository) ListActive(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)

	switch {
	case strings.TrimSpace(filter.Search) != "":
		needle := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", needle, needle)
	case strings.TrimSpace(filter.Category) != "":
		q = q.Where("LOWER(category) = ?", strings.ToLower(strings.TrimSpace(filter.Category)))
	}

	var rows []models.Product
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// AdjustStock applies delta atomically with a floor-at-zero guard. It returns
// false without mutation when the product is missing or the adjustment would
// drive stock negative.
func (r *Repository) AdjustStock(ctx context.Context, id int64, delta int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasSufficientStock reports whether the product exists with stock covering the
// required quantity. The active flag is deliberately not consulted here.
func (r *Repository) HasSufficientStock(ctx context.Context, id int64, required int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, required).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SoftDelete marks the product inactive. Idempotent; false only when the
// product does not exist.
func (r *Repository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DistinctCategories lists categories of active products, alphabetically, case
// as stored.
func (r *Repository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
