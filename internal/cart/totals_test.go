package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/01moynul/storefront-golang/internal/models"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}

func TestItemDetailTotals(t *testing.T) {
	t.Run("with original price", func(t *testing.T) {
		d := ItemDetail{
			Item: models.CartItem{Quantity: 3},
			Product: models.Product{
				Price:         dec(t, "19.99"),
				OriginalPrice: decimal.NewNullDecimal(dec(t, "29.99")),
			},
		}

		if !d.TotalPrice().Equal(dec(t, "59.97")) {
			t.Errorf("total price: got %s, want 59.97", d.TotalPrice())
		}
		if !d.TotalOriginalPrice().Equal(dec(t, "89.97")) {
			t.Errorf("total original price: got %s, want 89.97", d.TotalOriginalPrice())
		}
		if !d.Savings().Equal(dec(t, "30")) {
			t.Errorf("savings: got %s, want 30", d.Savings())
		}
	})

	t.Run("without original price", func(t *testing.T) {
		d := ItemDetail{
			Item:    models.CartItem{Quantity: 2},
			Product: models.Product{Price: dec(t, "10.50")},
		}

		if !d.TotalOriginalPrice().Equal(d.TotalPrice()) {
			t.Errorf("original total must equal total when no original price is set")
		}
		if !d.Savings().IsZero() {
			t.Errorf("savings: got %s, want 0", d.Savings())
		}
	})
}

func TestCartViewTotals(t *testing.T) {
	view := CartView{
		Items: []ItemDetail{
			{
				Item: models.CartItem{Quantity: 2},
				Product: models.Product{
					Price:         dec(t, "19.99"),
					OriginalPrice: decimal.NewNullDecimal(dec(t, "24.99")),
				},
			},
			{
				Item:    models.CartItem{Quantity: 1},
				Product: models.Product{Price: dec(t, "5.01")},
			},
		},
	}

	if got := view.TotalItems(); got != 3 {
		t.Errorf("total items: got %d, want 3", got)
	}
	if !view.TotalPrice().Equal(dec(t, "44.99")) {
		t.Errorf("total price: got %s, want 44.99", view.TotalPrice())
	}
	if !view.TotalOriginalPrice().Equal(dec(t, "54.99")) {
		t.Errorf("total original price: got %s, want 54.99", view.TotalOriginalPrice())
	}
	if !view.TotalSavings().Equal(dec(t, "10")) {
		t.Errorf("total savings: got %s, want 10", view.TotalSavings())
	}
}

func TestCartViewEmpty(t *testing.T) {
	var view CartView

	if got := view.TotalItems(); got != 0 {
		t.Errorf("total items: got %d, want 0", got)
	}
	if !view.TotalPrice().IsZero() {
		t.Errorf("total price: got %s, want 0", view.TotalPrice())
	}
	if !view.TotalSavings().IsZero() {
		t.Errorf("total savings: got %s, want 0", view.TotalSavings())
	}
}
