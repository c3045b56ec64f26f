package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the model for the 'products' table.
// Prices are decimals, never floats, so cart math stays exact.
type Product struct {
	ID          int64  `json:"id" db:"id"`
	CategoryID  *int64 `json:"categoryId,omitempty" db:"category_id"`
	BrandID     *int64 `json:"brandId,omitempty" db:"brand_id"`
	Name        string `json:"name" db:"name"`
	Slug        string `json:"slug" db:"slug"`
	Description string `json:"description" db:"description"`

	// --- Pricing & Stock ---
	Price         decimal.Decimal     `json:"price" db:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice,omitempty" db:"original_price"`
	Stock         int                 `json:"stock" db:"stock"`

	// --- Flags ---
	Available bool `json:"available" db:"available"`
	Featured  bool `json:"featured" db:"featured"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (not in the products table, populated manually)
	CategoryName string `json:"categoryName,omitempty" db:"-"`
	BrandName    string `json:"brandName,omitempty" db:"-"`
}

// EffectiveOriginalPrice returns the pre-discount unit price: the original
// price when one is set, the current price otherwise.
func (p Product) EffectiveOriginalPrice() decimal.Decimal {
	if p.OriginalPrice.Valid {
		return p.OriginalPrice.Decimal
	}
	return p.Price
}
