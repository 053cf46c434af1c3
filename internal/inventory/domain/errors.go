package domain

import "errors"

var (
	ErrStockNotFound       = errors.New("stock item not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrAlreadyInitialized  = errors.New("inventory already initialized")
)

var (
	ErrEmptySku           = errors.New("sku cannot be empty")
	ErrEmptyWarehouseID   = errors.New("warehouse id cannot be empty")
	ErrEmptyOrderID       = errors.New("order id cannot be empty")
	ErrEmptyAggregateID   = errors.New("aggregate id cannot be empty")
	ErrEmptyReservationID = errors.New("reservation id cannot be empty")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrNegativeQuantity   = errors.New("quantity cannot be negative")
	ErrNoLineItems        = errors.New("order must contain at least one line item")
)
