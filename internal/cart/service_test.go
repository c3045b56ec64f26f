package cart

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/01moynul/storefront-golang/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "cart_test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedProduct(t *testing.T, db *sql.DB, name, price, originalPrice string, stock int, available bool) int64 {
	t.Helper()
	now := database.ToMillis(time.Now())
	availableInt := 0
	if available {
		availableInt = 1
	}
	var original any
	if originalPrice != "" {
		original = originalPrice
	}
	result, err := db.Exec(
		`INSERT INTO products (name, slug, description, price, original_price, stock, available, featured, created_at, updated_at)
		 VALUES (?, ?, '', ?, ?, ?, ?, 0, ?, ?)`,
		name, name+"-slug", price, original, stock, availableInt, now, now)
	if err != nil {
		t.Fatalf("seed product %q: %v", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("seed product id: %v", err)
	}
	return id
}

func mustResolve(t *testing.T, svc *Service, identity Identity) int64 {
	t.Helper()
	resolved, err := svc.ResolveCart(context.Background(), identity)
	if err != nil {
		t.Fatalf("resolve cart: %v", err)
	}
	return resolved.ID
}

func TestResolveCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	t.Run("idempotent for user", func(t *testing.T) {
		first, err := svc.ResolveCart(ctx, UserIdentity(7))
		if err != nil {
			t.Fatalf("first resolve: %v", err)
		}
		second, err := svc.ResolveCart(ctx, UserIdentity(7))
		if err != nil {
			t.Fatalf("second resolve: %v", err)
		}
		if first.ID != second.ID {
			t.Fatalf("expected same cart, got %d and %d", first.ID, second.ID)
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM carts WHERE user_id = 7`).Scan(&count); err != nil {
			t.Fatalf("count carts: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected 1 cart row, got %d", count)
		}
	})

	t.Run("idempotent for session", func(t *testing.T) {
		first, err := svc.ResolveCart(ctx, SessionIdentity("sess-abc"))
		if err != nil {
			t.Fatalf("first resolve: %v", err)
		}
		second, err := svc.ResolveCart(ctx, SessionIdentity("sess-abc"))
		if err != nil {
			t.Fatalf("second resolve: %v", err)
		}
		if first.ID != second.ID {
			t.Fatalf("expected same cart, got %d and %d", first.ID, second.ID)
		}
	})

	t.Run("user and session get distinct carts", func(t *testing.T) {
		userCart, err := svc.ResolveCart(ctx, UserIdentity(8))
		if err != nil {
			t.Fatalf("user resolve: %v", err)
		}
		sessionCart, err := svc.ResolveCart(ctx, SessionIdentity("sess-xyz"))
		if err != nil {
			t.Fatalf("session resolve: %v", err)
		}
		if userCart.ID == sessionCart.ID {
			t.Fatal("user and session identities must not share a cart")
		}
	})

	t.Run("empty identity rejected", func(t *testing.T) {
		if _, err := svc.ResolveCart(ctx, Identity{}); err == nil {
			t.Fatal("expected error for empty identity")
		}
	})
}

func TestAddItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	productID := seedProduct(t, db, "Widget", "19.99", "", 10, true)

	t.Run("creates then merges", func(t *testing.T) {
		cartID := mustResolve(t, svc, UserIdentity(1))

		first, err := svc.AddItem(ctx, cartID, productID, 2)
		if err != nil {
			t.Fatalf("first add: %v", err)
		}
		if first.Item.Quantity != 2 {
			t.Fatalf("expected quantity 2, got %d", first.Item.Quantity)
		}

		second, err := svc.AddItem(ctx, cartID, productID, 3)
		if err != nil {
			t.Fatalf("second add: %v", err)
		}
		if second.Item.ID != first.Item.ID {
			t.Fatalf("expected merge into item %d, got new item %d", first.Item.ID, second.Item.ID)
		}
		if second.Item.Quantity != 5 {
			t.Fatalf("expected merged quantity 5, got %d", second.Item.Quantity)
		}
		if second.CartTotalItems != 5 {
			t.Fatalf("expected cart total 5 items, got %d", second.CartTotalItems)
		}
		if !second.ItemTotal.Equal(decimal.RequireFromString("99.95")) {
			t.Fatalf("expected item total 99.95, got %s", second.ItemTotal)
		}

		view, err := svc.GetCart(ctx, cartID)
		if err != nil {
			t.Fatalf("get cart: %v", err)
		}
		if len(view.Items) != 1 {
			t.Fatalf("expected a single cart item row, got %d", len(view.Items))
		}
	})

	t.Run("rejects quantity over stock with no item created", func(t *testing.T) {
		cartID := mustResolve(t, svc, UserIdentity(2))

		_, err := svc.AddItem(ctx, cartID, productID, 11)
		if !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}

		view, err := svc.GetCart(ctx, cartID)
		if err != nil {
			t.Fatalf("get cart: %v", err)
		}
		if len(view.Items) != 0 {
			t.Fatalf("expected no items after rejected add, got %d", len(view.Items))
		}
	})

	t.Run("rejects merge over stock leaving item unchanged", func(t *testing.T) {
		limitedID := seedProduct(t, db, "Limited", "5.00", "", 5, true)
		cartID := mustResolve(t, svc, UserIdentity(3))

		if _, err := svc.AddItem(ctx, cartID, limitedID, 3); err != nil {
			t.Fatalf("first add: %v", err)
		}
		_, err := svc.AddItem(ctx, cartID, limitedID, 3)
		if !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}

		view, err := svc.GetCart(ctx, cartID)
		if err != nil {
			t.Fatalf("get cart: %v", err)
		}
		if len(view.Items) != 1 || view.Items[0].Item.Quantity != 3 {
			t.Fatalf("expected item unchanged at quantity 3, got %+v", view.Items)
		}
	})

	t.Run("rejects unavailable product", func(t *testing.T) {
		hiddenID := seedProduct(t, db, "Hidden", "9.99", "", 10, false)
		cartID := mustResolve(t, svc, UserIdentity(4))

		_, err := svc.AddItem(ctx, cartID, hiddenID, 1)
		if !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock for unavailable product, got %v", err)
		}
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		cartID := mustResolve(t, svc, UserIdentity(5))

		_, err := svc.AddItem(ctx, cartID, 99999, 1)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects quantity below one", func(t *testing.T) {
		cartID := mustResolve(t, svc, UserIdentity(6))

		for _, quantity := range []int{0, -1} {
			_, err := svc.AddItem(ctx, cartID, productID, quantity)
			if !errors.Is(err, ErrInvalidQuantity) {
				t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", quantity, err)
			}
		}
	})
}

func TestUpdateItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	productID := seedProduct(t, db, "Widget", "10.00", "", 10, true)
	cartID := mustResolve(t, svc, UserIdentity(1))

	added, err := svc.AddItem(ctx, cartID, productID, 3)
	if err != nil {
		t.Fatalf("seed add: %v", err)
	}
	itemID := added.Item.ID

	t.Run("replaces quantity instead of adding", func(t *testing.T) {
		result, err := svc.UpdateItem(ctx, cartID, itemID, 2)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if result.Item.Quantity != 2 {
			t.Fatalf("expected quantity 2 after update, got %d", result.Item.Quantity)
		}
	})

	t.Run("rejects quantity over stock leaving item unchanged", func(t *testing.T) {
		_, err := svc.UpdateItem(ctx, cartID, itemID, 11)
		if !errors.Is(err, ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}

		view, err := svc.GetCart(ctx, cartID)
		if err != nil {
			t.Fatalf("get cart: %v", err)
		}
		if view.Items[0].Item.Quantity != 2 {
			t.Fatalf("expected quantity still 2, got %d", view.Items[0].Item.Quantity)
		}
	})

	t.Run("rejects quantity below one", func(t *testing.T) {
		_, err := svc.UpdateItem(ctx, cartID, itemID, 0)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("rejects another cart's item", func(t *testing.T) {
		otherCartID := mustResolve(t, svc, UserIdentity(2))

		_, err := svc.UpdateItem(ctx, otherCartID, itemID, 1)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}

		view, err := svc.GetCart(ctx, cartID)
		if err != nil {
			t.Fatalf("get cart: %v", err)
		}
		if view.Items[0].Item.Quantity != 2 {
			t.Fatalf("cross-cart update must not touch the item, quantity is %d", view.Items[0].Item.Quantity)
		}
	})

	t.Run("rejects missing item", func(t *testing.T) {
		_, err := svc.UpdateItem(ctx, cartID, 99999, 1)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRemoveItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	productID := seedProduct(t, db, "Widget", "10.00", "", 10, true)
	cartID := mustResolve(t, svc, UserIdentity(1))

	added, err := svc.AddItem(ctx, cartID, productID, 1)
	if err != nil {
		t.Fatalf("seed add: %v", err)
	}

	t.Run("second remove fails not found", func(t *testing.T) {
		if err := svc.RemoveItem(ctx, cartID, added.Item.ID); err != nil {
			t.Fatalf("first remove: %v", err)
		}
		err := svc.RemoveItem(ctx, cartID, added.Item.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second remove, got %v", err)
		}
	})

	t.Run("rejects another cart's item", func(t *testing.T) {
		again, err := svc.AddItem(ctx, cartID, productID, 1)
		if err != nil {
			t.Fatalf("re-add: %v", err)
		}
		otherCartID := mustResolve(t, svc, SessionIdentity("other"))

		err = svc.RemoveItem(ctx, otherCartID, again.Item.ID)
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}

		view, err := svc.GetCart(ctx, cartID)
		if err != nil {
			t.Fatalf("get cart: %v", err)
		}
		if len(view.Items) != 1 {
			t.Fatalf("cross-cart remove must not delete the item")
		}
	})
}

func TestClearCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	productID := seedProduct(t, db, "Widget", "10.00", "", 10, true)
	cartID := mustResolve(t, svc, UserIdentity(1))

	if _, err := svc.AddItem(ctx, cartID, productID, 4); err != nil {
		t.Fatalf("seed add: %v", err)
	}

	if err := svc.ClearCart(ctx, cartID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	view, err := svc.GetCart(ctx, cartID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(view.Items))
	}

	// Clearing an empty cart is fine, and the cart row survives.
	if err := svc.ClearCart(ctx, cartID); err != nil {
		t.Fatalf("clear empty cart: %v", err)
	}
	if resolvedID := mustResolve(t, svc, UserIdentity(1)); resolvedID != cartID {
		t.Fatalf("cart row must persist after clear, got %d want %d", resolvedID, cartID)
	}
}

func TestConcurrentAddsShareOneRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, nil)
	ctx := context.Background()

	productID := seedProduct(t, db, "Widget", "10.00", "", 100, true)
	cartID := mustResolve(t, svc, UserIdentity(1))

	const workers = 4
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = svc.AddItem(ctx, cartID, productID, 1)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrConflict):
			// A lost race after the internal retry is acceptable.
		default:
			t.Fatalf("unexpected error from concurrent add: %v", err)
		}
	}
	if successes == 0 {
		t.Fatal("expected at least one concurrent add to succeed")
	}

	view, err := svc.GetCart(ctx, cartID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("concurrent adds must merge into one row, got %d", len(view.Items))
	}
	if view.Items[0].Item.Quantity != successes {
		t.Fatalf("expected quantity %d, got %d", successes, view.Items[0].Item.Quantity)
	}
}
