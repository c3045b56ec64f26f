package models

import "time"

// Cart defines the struct for the 'carts' table.
// Exactly one of UserID / SessionKey is set: a cart belongs to either an
// authenticated user or an anonymous session, never both. The table enforces
// this with independent unique indexes plus a CHECK constraint.
type Cart struct {
	ID         int64     `json:"id" db:"id"`
	UserID     *int64    `json:"userId,omitempty" db:"user_id"`
	SessionKey *string   `json:"sessionKey,omitempty" db:"session_key"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem defines the struct for the 'cart_items' table.
// At most one row exists per (cart_id, product_id); a second add of the same
// product merges into the existing row's quantity.
type CartItem struct {
	ID        int64     `json:"id" db:"id"`
	CartID    int64     `json:"cartId" db:"cart_id"`
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
