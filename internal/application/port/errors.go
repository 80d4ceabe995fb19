package port

import (
	"errors"
	"fmt"
)

// ErrRepositoryFailure marks a network or server failure while listing or updating claims
var ErrRepositoryFailure = errors.New("repository failure")

// RepositoryError wraps a transport or server failure
type RepositoryError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RepositoryError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.StatusCode)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, ErrRepositoryFailure)
	}
}

// Unwrap exposes both the sentinel and the underlying cause
func (e *RepositoryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRepositoryFailure, e.Err}
	}
	return []error{ErrRepositoryFailure}
}
