package cart

import (
	"errors"
	"fmt"
)

var (
	ErrStockExceeded   = errors.New("stock exceeded")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrSessionNotFound = errors.New("cart session not found")
	ErrSessionExists   = errors.New("cart session already exists")
)

// StockExceededError is returned after the cart has been clamped to Limit.
// The operation it comes from has still been applied.
type StockExceededError struct {
	ID        int64
	Requested int64
	Limit     int64
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("only %d items available", e.Limit)
}

func (e *StockExceededError) Unwrap() error {
	return ErrStockExceeded
}
