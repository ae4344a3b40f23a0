package order

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrStatusTransition   = errors.New("order status can not change that way")
	ErrEmptyOrderItems    = errors.New("no items to checkout")
	ErrCheckoutValidation = errors.New("checkout validation failed")
)
