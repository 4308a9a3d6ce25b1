// Package apperr defines the error kinds shared across services and the
// mapping from those kinds to HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrStore              = errors.New("storage failure")
)

// FieldError describes a single rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validation builds a ValidationError from field errors.
func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Field is shorthand for a single FieldError.
func Field(field, message string) FieldError {
	return FieldError{Field: field, Message: message}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// NotFound wraps ErrNotFound with the resource description.
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// Store wraps a low-level storage error so handlers collapse it to a
// generic 500 without leaking driver details to clients.
func Store(err error) error {
	return fmt.Errorf("%w: %v", ErrStore, err)
}
