package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every ValidationError through errors.Is.
	ErrValidation = errors.New("validation failed")

	ErrProductNotFound   = errors.New("product not found")
	ErrStoreNotFound     = errors.New("store not found for this product")
	ErrInsufficientStock = errors.New("not enough stock available in this store")
)

// ValidationError carries a client-facing description of rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
