package market

import "errors"

var (
	// ErrEmptyCart is returned by PlaceOrder when the buyer has no cart lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidTransition is returned when a line item is not in a state
	// the requested transition starts from.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a referenced order, line item or product
	// does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")
)
