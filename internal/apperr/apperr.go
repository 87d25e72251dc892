// Package apperr defines the closed error taxonomy of the billing and stock
// core. Services return these; handlers translate them to HTTP statuses.
// Anything not covered here is treated as a storage failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate")
	ErrStorage           = errors.New("storage error")
)

// Validation reports malformed or missing input. Fails before any write.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound reports an absent branch or product. Fails before any write.
func NotFound(entity string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, entity, id)
}

// Duplicate reports a serial-number or invoice-number collision.
func Duplicate(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDuplicate, fmt.Sprintf(format, args...))
}

// Storage wraps an underlying write/read failure.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

// InsufficientStockError names the product so callers can surface which line
// item cannot be fulfilled.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
