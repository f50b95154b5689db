package repositories

import (
	"errors"
	"fmt"
)

// ErrOperatorNotFound is returned when an operator id does not exist
var ErrOperatorNotFound = errors.New("operator not found")

// ErrUserNotFound is returned when a username does not exist
var ErrUserNotFound = errors.New("user not found")

// ValidationError reports a malformed or out-of-domain value at the store boundary
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
