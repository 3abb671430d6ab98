// Package apperr defines the error taxonomy shared by all SIGA domain
// operations. Every controller failure wraps exactly one of the three kinds
// so callers can classify it with errors.Is without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input: a bad hierarchy level, an invalid
	// unit type transition or a missing required field. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrConflict marks a state conflict the caller may resolve and retry:
	// duplicate assignment triple, duplicate unit code, delete with children.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an operation on a nonexistent unit, role, user or
	// assignment.
	ErrNotFound = errors.New("not found")
)

// Validationf returns a formatted error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// Conflictf returns a formatted error wrapping ErrConflict.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// NotFoundf returns a formatted error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}
