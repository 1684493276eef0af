package database

import (
	"errors"
	"fmt"
)

// Domain errors shared between the repositories and the HTTP layer.
// The HTTP layer maps these onto status codes; none of them carry
// internal detail that would be unsafe to show a caller.
var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("already exists")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrSelfPurchase = errors.New("cannot purchase your own book")
)

// InsufficientStockError names the book that blocked a checkout or a cart
// quantity update. The whole operation is aborted when it is returned.
type InsufficientStockError struct {
	BookID    uint
	Title     string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available", e.Title, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
