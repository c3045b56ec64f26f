package cart

import (
	"github.com/shopspring/decimal"

	"github.com/01moynul/storefront-golang/internal/models"
)

// ItemDetail is a cart item joined with its product. Totals are methods, not
// fields: quantities and prices can change between reads, so derived values
// are always computed from current state and never stored.
type ItemDetail struct {
	Item    models.CartItem
	Product models.Product
}

// TotalPrice is the item's line total: unit price times quantity.
func (d ItemDetail) TotalPrice() decimal.Decimal {
	return d.Product.Price.Mul(decimal.NewFromInt(int64(d.Item.Quantity)))
}

// TotalOriginalPrice is the line total at the pre-discount price. When the
// product has no original price it equals TotalPrice.
func (d ItemDetail) TotalOriginalPrice() decimal.Decimal {
	return d.Product.EffectiveOriginalPrice().Mul(decimal.NewFromInt(int64(d.Item.Quantity)))
}

// Savings is how much the discount saves on this line.
func (d ItemDetail) Savings() decimal.Decimal {
	return d.TotalOriginalPrice().Sub(d.TotalPrice())
}

// CartView is a cart with its current items, loaded fresh per read.
type CartView struct {
	Cart  models.Cart
	Items []ItemDetail
}

// TotalItems is the sum of item quantities.
func (v CartView) TotalItems() int {
	total := 0
	for _, d := range v.Items {
		total += d.Item.Quantity
	}
	return total
}

// TotalPrice is the sum of line totals.
func (v CartView) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, d := range v.Items {
		total = total.Add(d.TotalPrice())
	}
	return total
}

// TotalOriginalPrice is the sum of pre-discount line totals.
func (v CartView) TotalOriginalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, d := range v.Items {
		total = total.Add(d.TotalOriginalPrice())
	}
	return total
}

// TotalSavings is the cart-wide discount.
func (v CartView) TotalSavings() decimal.Decimal {
	return v.TotalOriginalPrice().Sub(v.TotalPrice())
}
