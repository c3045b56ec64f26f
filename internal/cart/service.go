// Package cart implements the storefront's cart domain: resolving the cart
// for a user or anonymous session, stock-aware add/update/remove/clear
// operations, and derived pricing totals. Every mutation runs in a single
// transaction; a mutation either fully applies or fully rejects.
package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
)

// conflictRetries is how many times an operation is transparently re-run
// after a concurrent write hits a uniqueness constraint.
const conflictRetries = 1

// Service exposes the cart operations. It owns no cart state; everything
// lives in the carts / cart_items tables.
type Service struct {
	db  *sql.DB
	log *zap.Logger
}

func NewService(db *sql.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

// ItemResult is returned by mutating item operations so callers can render
// updated totals without a second round trip.
type ItemResult struct {
	Item           models.CartItem
	ItemTotal      decimal.Decimal
	CartTotalItems int
	CartTotalPrice decimal.Decimal
}

// ResolveCart fetches the cart owned by the identity, creating it on first
// use. Repeated calls with the same identity return the same cart: the unique
// indexes on carts.user_id and carts.session_key guarantee one cart per
// identity, and a lost race on insert falls back to fetching the winner's row.
func (s *Service) ResolveCart(ctx context.Context, identity Identity) (models.Cart, error) {
	if !identity.Valid() {
		return models.Cart{}, errors.New("cart: identity must carry exactly one of user id or session key")
	}

	cart, err := s.findCart(ctx, identity)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Cart{}, err
	}

	cart, err = insertCart(ctx, s.db, identity, time.Now())
	if err != nil {
		if database.IsUniqueViolation(err) {
			// A concurrent request created the cart first; use its row.
			return s.findCart(ctx, identity)
		}
		return models.Cart{}, err
	}
	s.log.Info("cart created", zap.Int64("cart_id", cart.ID))
	return cart, nil
}

func (s *Service) findCart(ctx context.Context, identity Identity) (models.Cart, error) {
	if identity.UserID != nil {
		return findCartByUser(ctx, s.db, *identity.UserID)
	}
	return findCartBySession(ctx, s.db, *identity.SessionKey)
}

// AddItem puts quantity units of a product into the cart. Adding a product
// already in the cart merges into the existing line: the new quantity is
// existing + requested, validated against current stock before anything is
// written. On a stock failure the existing line is left untouched.
func (s *Service) AddItem(ctx context.Context, cartID, productID int64, quantity int) (ItemResult, error) {
	if quantity < 1 {
		return ItemResult{}, failf(ErrInvalidQuantity, "Please enter a valid quantity.")
	}

	var result ItemResult
	err := s.withConflictRetry(func() error {
		var err error
		result, err = s.addItemOnce(ctx, cartID, productID, quantity)
		return err
	})
	if err != nil {
		return ItemResult{}, err
	}
	s.log.Info("item added",
		zap.Int64("cart_id", cartID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity))
	return result, nil
}

func (s *Service) addItemOnce(ctx context.Context, cartID, productID int64, quantity int) (ItemResult, error) {
	var result ItemResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		product, err := findProduct(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return failf(ErrNotFound, "Product not found.")
			}
			return err
		}
		if !product.Available || product.Stock < quantity {
			return failf(ErrInsufficientStock,
				"Sorry, %s is not available in the requested quantity.", product.Name)
		}

		now := time.Now()
		existing, err := findItemForProduct(ctx, tx, cartID, productID)
		switch {
		case err == nil:
			newQuantity := existing.Quantity + quantity
			if newQuantity > product.Stock {
				return failf(ErrInsufficientStock,
					"Cannot add more items. Only %d items available.", product.Stock)
			}
			if err := setItemQuantity(ctx, tx, existing.ID, newQuantity, now); err != nil {
				return err
			}
			existing.Quantity = newQuantity
			existing.UpdatedAt = now.UTC()
			result.Item = existing
		case errors.Is(err, ErrNotFound):
			item, err := insertItem(ctx, tx, cartID, productID, quantity, now)
			if err != nil {
				if database.IsUniqueViolation(err) {
					// Concurrent add inserted the row first; the retry will
					// take the merge path.
					return failf(ErrConflict, "")
				}
				return err
			}
			result.Item = item
		default:
			return err
		}

		if err := touchCart(ctx, tx, cartID, now); err != nil {
			return err
		}
		return s.fillTotals(ctx, tx, cartID, &result)
	})
	return result, err
}

// UpdateItem sets the item's quantity to an absolute value (not additive).
// The item must belong to the given cart and the value must be within stock.
func (s *Service) UpdateItem(ctx context.Context, cartID, itemID int64, quantity int) (ItemResult, error) {
	if quantity < 1 {
		return ItemResult{}, failf(ErrInvalidQuantity, "Please enter a valid quantity.")
	}

	var result ItemResult
	err := s.withConflictRetry(func() error {
		return s.withTx(ctx, func(tx *sql.Tx) error {
			item, err := s.ownedItem(ctx, tx, cartID, itemID)
			if err != nil {
				return err
			}
			product, err := findProduct(ctx, tx, item.ProductID)
			if err != nil {
				return err
			}
			if quantity > product.Stock {
				return failf(ErrInsufficientStock,
					"Cannot update quantity. Only %d items available.", product.Stock)
			}

			now := time.Now()
			if err := setItemQuantity(ctx, tx, item.ID, quantity, now); err != nil {
				return err
			}
			item.Quantity = quantity
			item.UpdatedAt = now.UTC()
			result.Item = item

			if err := touchCart(ctx, tx, cartID, now); err != nil {
				return err
			}
			return s.fillTotals(ctx, tx, cartID, &result)
		})
	})
	if err != nil {
		return ItemResult{}, err
	}
	return result, nil
}

// RemoveItem deletes the item from the cart. Removing an already-removed
// item fails with ErrNotFound rather than succeeding silently.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := s.ownedItem(ctx, tx, cartID, itemID)
		if err != nil {
			return err
		}
		if err := deleteItem(ctx, tx, item.ID); err != nil {
			return err
		}
		return touchCart(ctx, tx, cartID, time.Now())
	})
	if err != nil {
		return err
	}
	s.log.Info("item removed", zap.Int64("cart_id", cartID), zap.Int64("item_id", itemID))
	return nil
}

// ClearCart deletes every item in the cart. An empty cart is a valid terminal
// state, so clearing an already-empty cart succeeds. The cart row persists.
func (s *Service) ClearCart(ctx context.Context, cartID int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := deleteItemsByCart(ctx, tx, cartID); err != nil {
			return err
		}
		return touchCart(ctx, tx, cartID, time.Now())
	})
	if err != nil {
		return err
	}
	s.log.Info("cart cleared", zap.Int64("cart_id", cartID))
	return nil
}

// GetCart loads the cart and its items with products joined in. Totals on the
// returned view are computed from this snapshot, never from stored fields.
func (s *Service) GetCart(ctx context.Context, cartID int64) (CartView, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, session_key, created_at, updated_at
		   FROM carts WHERE id = ?`, cartID)
	cart, err := scanCart(row)
	if err != nil {
		return CartView{}, err
	}
	items, err := listItemDetails(ctx, s.db, cartID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Cart: cart, Items: items}, nil
}

// ownedItem loads an item and checks it belongs to the cart. A missing item
// is ErrNotFound; an item owned by another cart is ErrForbidden, and the
// other cart is left untouched.
func (s *Service) ownedItem(ctx context.Context, tx *sql.Tx, cartID, itemID int64) (models.CartItem, error) {
	item, err := findItemByID(ctx, tx, itemID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.CartItem{}, failf(ErrNotFound, "Item not found in cart.")
		}
		return models.CartItem{}, err
	}
	if item.CartID != cartID {
		return models.CartItem{}, failf(ErrForbidden, "This item belongs to a different cart.")
	}
	return item, nil
}

func (s *Service) fillTotals(ctx context.Context, tx *sql.Tx, cartID int64, result *ItemResult) error {
	items, err := listItemDetails(ctx, tx, cartID)
	if err != nil {
		return err
	}
	view := CartView{Items: items}
	result.CartTotalItems = view.TotalItems()
	result.CartTotalPrice = view.TotalPrice()
	for _, d := range items {
		if d.Item.ID == result.Item.ID {
			result.ItemTotal = d.TotalPrice()
			break
		}
	}
	return nil
}

func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) withConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt <= conflictRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
		s.log.Debug("retrying after write conflict")
	}
	return err
}
