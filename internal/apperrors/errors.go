// Package apperrors defines sentinel errors shared across storage and
// handlers so callers can branch with errors.Is instead of matching on
// driver-specific error strings.
package apperrors

import "errors"

var (
	// ErrNotFound signals that a requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey signals a unique-constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnavailable signals a transient storage failure.
	ErrUnavailable = errors.New("storage unavailable")
)
