package service

import (
	"errors"
	"fmt"
)

// Validation failures are reported before any store access happens.
var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrBuyerNameRequired  = errors.New("buyer_name is required")
	ErrBuyerEmailRequired = errors.New("buyer_email is required")
	ErrInvalidBuyerEmail  = errors.New("buyer_email is not a valid email address")
)

// ErrTotalPriceTooLarge reports a quantity × price product that does not
// fit the 32-bit cents field tickets carry.
var ErrTotalPriceTooLarge = errors.New("total price does not fit the cents field")

// ErrCapacityExceeded is the sentinel for capacity rejections. Callers
// match it with errors.Is; the concrete *CapacityExceededError carries
// the numbers so handlers can state the conflict instead of answering
// with a generic 400.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// CapacityExceededError reports a reservation that does not fit within
// the event's maximum capacity.
type CapacityExceededError struct {
	EventID   uint64 // event the reservation targeted
	Requested uint32 // quantity asked for
	Committed uint32 // quantity already committed (non-cancelled tickets)
	Capacity  uint32 // event's maximum capacity
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("event %d capacity exceeded: %d committed + %d requested > %d capacity",
		e.EventID, e.Committed, e.Requested, e.Capacity)
}

func (e *CapacityExceededError) Unwrap() error {
	return ErrCapacityExceeded
}
