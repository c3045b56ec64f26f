package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
)

// querier is satisfied by *sql.DB and *sql.Tx, so the row-level functions
// below run either standalone or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanCart(row *sql.Row) (models.Cart, error) {
	var cart models.Cart
	var createdAt, updatedAt int64
	err := row.Scan(&cart.ID, &cart.UserID, &cart.SessionKey, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Cart{}, ErrNotFound
		}
		return models.Cart{}, err
	}
	cart.CreatedAt = database.FromMillis(createdAt)
	cart.UpdatedAt = database.FromMillis(updatedAt)
	return cart, nil
}

func findCartByUser(ctx context.Context, q querier, userID int64) (models.Cart, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, user_id, session_key, created_at, updated_at
		   FROM carts WHERE user_id = ?`, userID)
	return scanCart(row)
}

func findCartBySession(ctx context.Context, q querier, sessionKey string) (models.Cart, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, user_id, session_key, created_at, updated_at
		   FROM carts WHERE session_key = ?`, sessionKey)
	return scanCart(row)
}

func insertCart(ctx context.Context, q querier, identity Identity, now time.Time) (models.Cart, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO carts (user_id, session_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		identity.UserID, identity.SessionKey,
		database.ToMillis(now), database.ToMillis(now))
	if err != nil {
		return models.Cart{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Cart{}, err
	}
	return models.Cart{
		ID:         id,
		UserID:     identity.UserID,
		SessionKey: identity.SessionKey,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

// touchCart bumps the cart's updated_at whenever a contained item changes.
func touchCart(ctx context.Context, q querier, cartID int64, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`UPDATE carts SET updated_at = ? WHERE id = ?`,
		database.ToMillis(now), cartID)
	return err
}

func scanItem(row *sql.Row) (models.CartItem, error) {
	var item models.CartItem
	var createdAt, updatedAt int64
	err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CartItem{}, ErrNotFound
		}
		return models.CartItem{}, err
	}
	item.CreatedAt = database.FromMillis(createdAt)
	item.UpdatedAt = database.FromMillis(updatedAt)
	return item, nil
}

func findItemByID(ctx context.Context, q querier, itemID int64) (models.CartItem, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, cart_id, product_id, quantity, created_at, updated_at
		   FROM cart_items WHERE id = ?`, itemID)
	return scanItem(row)
}

func findItemForProduct(ctx context.Context, q querier, cartID, productID int64) (models.CartItem, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, cart_id, product_id, quantity, created_at, updated_at
		   FROM cart_items WHERE cart_id = ? AND product_id = ?`, cartID, productID)
	return scanItem(row)
}

func insertItem(ctx context.Context, q querier, cartID, productID int64, quantity int, now time.Time) (models.CartItem, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		cartID, productID, quantity,
		database.ToMillis(now), database.ToMillis(now))
	if err != nil {
		return models.CartItem{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.CartItem{}, err
	}
	return models.CartItem{
		ID:        id,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

func setItemQuantity(ctx context.Context, q querier, itemID int64, quantity int, now time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ?`,
		quantity, database.ToMillis(now), itemID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteItem(ctx context.Context, q querier, itemID int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, itemID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteItemsByCart(ctx context.Context, q querier, cartID int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID)
	return err
}

// findProduct loads the read-only product fields the cart validates against.
func findProduct(ctx context.Context, q querier, productID int64) (models.Product, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, name, slug, price, original_price, stock, available
		   FROM products WHERE id = ?`, productID)

	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Price, &p.OriginalPrice, &p.Stock, &p.Available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

// listItemDetails returns the cart's items joined with their products,
// ordered by insertion.
func listItemDetails(ctx context.Context, q querier, cartID int64) ([]ItemDetail, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		        p.id, p.name, p.slug, p.price, p.original_price, p.stock, p.available
		   FROM cart_items ci
		   JOIN products p ON p.id = ci.product_id
		  WHERE ci.cart_id = ?
		  ORDER BY ci.id ASC`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []ItemDetail
	for rows.Next() {
		var d ItemDetail
		var createdAt, updatedAt int64
		if err := rows.Scan(
			&d.Item.ID, &d.Item.CartID, &d.Item.ProductID, &d.Item.Quantity,
			&createdAt, &updatedAt,
			&d.Product.ID, &d.Product.Name, &d.Product.Slug,
			&d.Product.Price, &d.Product.OriginalPrice,
			&d.Product.Stock, &d.Product.Available,
		); err != nil {
			return nil, err
		}
		d.Item.CreatedAt = database.FromMillis(createdAt)
		d.Item.UpdatedAt = database.FromMillis(updatedAt)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
