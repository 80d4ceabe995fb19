package service

import "errors"

var (
	// ErrNotFound is returned when a claim does not exist or is not visible to the actor
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed claim input
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is returned when the actor's role may not perform the operation
	ErrForbidden = errors.New("forbidden")
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}
