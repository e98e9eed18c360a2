package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyCart rejects order creation from a cart with no items.
var ErrEmptyCart = errors.New("cannot create order from an empty shopping cart")

// InsufficientStockError identifies the offending product together with the
// requested and available quantities.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// InconsistencyError signals a broken invariant (an order vanishing between
// creation and settlement, a user without a cart). It is a server fault, never
// user input.
type InconsistencyError struct {
	Message string
	Err     error
}

func (e *InconsistencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data inconsistency: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("data inconsistency: %s", e.Message)
}

func (e *InconsistencyError) Unwrap() error { return e.Err }
