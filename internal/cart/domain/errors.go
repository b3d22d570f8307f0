package domain

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// InsufficientStockError carries the inventory service's own message so
// callers can show it to the user.
type InsufficientStockError struct {
	Message string
}

func (e *InsufficientStockError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "product not available in sufficient quantity"
}
