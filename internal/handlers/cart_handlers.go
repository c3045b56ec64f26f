package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/middleware"
)

//
// --- Cart Handlers ---
//

// resolveCart fetches or creates the cart for the request's identity. On
// failure it writes the error response and returns ok=false.
func (h *Handlers) resolveCart(c *gin.Context) (int64, bool) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart identity missing from request"})
		return 0, false
	}
	resolved, err := h.Cart.ResolveCart(c.Request.Context(), identity)
	if err != nil {
		h.Log.Error("cart resolution failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart initialization failed"})
		return 0, false
	}
	return resolved.ID, true
}

// cartError writes the response for a failed cart operation: the error kind
// picks the status, the attached message is what the shopper sees.
func (h *Handlers) cartError(c *gin.Context, err error) {
	status := cart.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("cart operation failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": cart.DisplayMessage(err)})
}

// CartItemResponse is one cart line with its derived totals, rendered as
// decimal strings so nothing is lost to floating point.
type CartItemResponse struct {
	ID                 int64  `json:"id"`
	ProductID          int64  `json:"productId"`
	Name               string `json:"name"`
	Slug               string `json:"slug"`
	Price              string `json:"price"`
	Quantity           int    `json:"quantity"`
	Stock              int    `json:"stock"`
	TotalPrice         string `json:"totalPrice"`
	TotalOriginalPrice string `json:"totalOriginalPrice"`
	Savings            string `json:"savings"`
}

// GetCart is the handler for GET /v1/cart.
func (h *Handlers) GetCart(c *gin.Context) {
	cartID, ok := h.resolveCart(c)
	if !ok {
		return
	}

	view, err := h.Cart.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.cartError(c, err)
		return
	}

	items := make([]CartItemResponse, 0, len(view.Items))
	for _, d := range view.Items {
		items = append(items, CartItemResponse{
			ID:                 d.Item.ID,
			ProductID:          d.Product.ID,
			Name:               d.Product.Name,
			Slug:               d.Product.Slug,
			Price:              d.Product.Price.String(),
			Quantity:           d.Item.Quantity,
			Stock:              d.Product.Stock,
			TotalPrice:         d.TotalPrice().String(),
			TotalOriginalPrice: d.TotalOriginalPrice().String(),
			Savings:            d.Savings().String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                 view.Cart.ID,
		"items":              items,
		"totalItems":         view.TotalItems(),
		"totalPrice":         view.TotalPrice().String(),
		"totalOriginalPrice": view.TotalOriginalPrice().String(),
		"totalSavings":       view.TotalSavings().String(),
	})
}

// AddToCartInput defines the JSON for adding an item to the cart. Quantity
// is optional and defaults to 1; a value that is present but not a positive
// integer is rejected, never coerced.
type AddToCartInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  *int  `json:"quantity"`
}

// AddToCart is the handler for POST /v1/cart/items.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	product, err := h.Catalog.GetByID(c.Request.Context(), input.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found."})
			return
		}
		h.Log.Error("product lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	cartID, ok := h.resolveCart(c)
	if !ok {
		return
	}

	result, err := h.Cart.AddItem(c.Request.Context(), cartID, input.ProductID, quantity)
	if err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"message":        product.Name + " added to cart successfully!",
		"itemTotal":      result.ItemTotal.String(),
		"cartTotalItems": result.CartTotalItems,
		"cartTotalPrice": result.CartTotalPrice.String(),
	})
}

// UpdateCartItemInput defines the JSON for setting an item's quantity.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:id. The quantity is
// an absolute value, not an increment.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid quantity."})
		return
	}

	cartID, ok := h.resolveCart(c)
	if !ok {
		return
	}

	result, err := h.Cart.UpdateItem(c.Request.Context(), cartID, itemID, *input.Quantity)
	if err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Cart updated successfully!",
		"itemTotal":      result.ItemTotal.String(),
		"cartTotalItems": result.CartTotalItems,
		"cartTotalPrice": result.CartTotalPrice.String(),
	})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:id.
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	cartID, ok := h.resolveCart(c)
	if !ok {
		return
	}

	if err := h.Cart.RemoveItem(c.Request.Context(), cartID, itemID); err != nil {
		h.cartError(c, err)
		return
	}

	view, err := h.Cart.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Item removed from cart.",
		"cartTotalItems": view.TotalItems(),
		"cartTotalPrice": view.TotalPrice().String(),
	})
}

// ClearCart is the handler for DELETE /v1/cart. Clearing an empty cart is
// fine; the cart itself survives, empty.
func (h *Handlers) ClearCart(c *gin.Context) {
	cartID, ok := h.resolveCart(c)
	if !ok {
		return
	}

	if err := h.Cart.ClearCart(c.Request.Context(), cartID); err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cart cleared successfully!",
	})
}

// GetCartCount is the handler for GET /v1/cart/count, a lightweight badge
// endpoint.
func (h *Handlers) GetCartCount(c *gin.Context) {
	cartID, ok := h.resolveCart(c)
	if !ok {
		return
	}

	view, err := h.Cart.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.cartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cartCount": view.TotalItems(),
		"cartTotal": view.TotalPrice().String(),
	})
}
