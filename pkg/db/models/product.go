package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Products are soft-deleted by flipping
// is_active; rows are never removed so historical cart references stay
// resolvable.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string          `gorm:"column:name;size:100;not null"`
	Description string          `gorm:"column:description;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	Category    string          `gorm:"column:category;size:50;not null"`
	ImageURL    *string         `gorm:"column:image_url;size:200"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// InStock reports whether any stock remains.
func (p *Product) InStock() bool {
	return p.Stock > 0
}
