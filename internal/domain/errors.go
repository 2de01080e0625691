// Package domain defines the catalog entities and the errors shared across layers.
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBrandNotFound    = errors.New("brand not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrUserNotFound     = errors.New("user not found")

	ErrCategoryInUse = errors.New("category is referenced by products")
	ErrBrandInUse    = errors.New("brand is referenced by products")

	ErrForbidden = errors.New("insufficient permissions")

	// ErrInsufficientStock is raised by the store when a conditional decrement matches no row
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Validation failure kinds. They are always delivered wrapped in a *ValidationError.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCount        = errors.New("count should be >= 0")
	ErrInvalidPrice        = errors.New("price should be > 0")
	ErrRequiredField       = errors.New("field is required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrDuplicateImageName  = errors.New("image with this name already exists")
	ErrFileNotFound        = errors.New("image file does not exist")
	ErrFileExists          = errors.New("image file already exists")
	ErrInvalidPagination   = errors.New("invalid pagination parameters")
)

// ValidationError is returned when a value fails a catalog rule before any write
type ValidationError struct {
	Field string
	Value interface{}
	Err   error
}

// NewValidationError creates a ValidationError of the given kind
func NewValidationError(field string, value interface{}, kind error) error {
	return &ValidationError{Field: field, Value: value, Err: kind}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v (%v)", e.Field, e.Err, e.Value)
}

// Unwrap exposes the failure kind to errors.Is
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is matches the ErrValidation family
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidationError checks if err carries a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsReferenceError reports whether err is a validation failure caused by a missing referenced row
func IsReferenceError(err error) bool {
	if !IsValidationError(err) {
		return false
	}
	return errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrBrandNotFound) ||
		errors.Is(err, ErrProductNotFound)
}
