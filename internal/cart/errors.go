package cart

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds raised by cart operations. Every failure wraps one of these,
// so callers can branch with errors.Is regardless of the display message.
var (
	// ErrNotFound: the product or cart item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the item belongs to a different cart.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidQuantity: quantity did not parse to an integer >= 1.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInsufficientStock: requested or merged quantity exceeds current
	// stock, or the product is not for sale.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict: a concurrent write hit a uniqueness constraint. The
	// operation is retried once internally before this surfaces.
	ErrConflict = errors.New("conflict")
)

// Error pairs an error kind with a message fit for display to the shopper.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

func failf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// DisplayMessage returns the human-readable message for a cart error, with a
// per-kind fallback when the operation did not attach one.
func DisplayMessage(err error) string {
	var cartErr *Error
	if errors.As(err, &cartErr) && cartErr.Message != "" {
		return cartErr.Message
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "The requested item could not be found."
	case errors.Is(err, ErrForbidden):
		return "You do not have access to this item."
	case errors.Is(err, ErrInvalidQuantity):
		return "Please enter a valid quantity."
	case errors.Is(err, ErrInsufficientStock):
		return "Sorry, this product is not available in the requested quantity."
	case errors.Is(err, ErrConflict):
		return "Your cart was updated by another request. Please try again."
	}
	return "Something went wrong. Please try again."
}

// HTTPStatus maps a cart error kind to the status the API layer responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
