package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a link was not found.
	ErrNotFound = errors.New("link not found")

	// ErrInvalidURL indicates an invalid URL was provided.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrDuplicate indicates a duplicate URL already exists.
	ErrDuplicate = errors.New("duplicate URL")

	// ErrValidation indicates input was rejected before storage was touched.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence indicates the backing store could not be written.
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation for every ValidationError so callers can branch
// on the kind without a type assertion.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error { return e.Err }
