package errors

import "errors"

var (
	ErrProductNotFound        = errors.New("product not found")
	ErrProductAlreadyExists   = errors.New("product already exists")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrConflictRetryExhausted = errors.New("append conflicted with a concurrent writer")
)
