package models

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed user input. It is raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	// ErrEmptyCart is returned by checkout when there is nothing to order
	ErrEmptyCart = &ValidationError{Field: "cart", Message: "cart is empty"}
	// ErrNotAuthenticated is returned when an operation needs a stored auth token
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrItemNotFound is returned when the catalog has no item with the requested id
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidCredentials is returned when the auth service rejects a login
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrLineNotFound is returned when the cart has no line with the requested id
	ErrLineNotFound = errors.New("cart line not found")
)
