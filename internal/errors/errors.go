// Package errors defines the sentinel errors shared by every component. Use cases wrap
// them with context so callers and the ops HTTP layer can classify failures with Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized covers bad passwords, lockouts, unknown or expired sessions and
	// rejected API keys.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the identity is valid but lacks a permission.
	ErrForbidden = errors.New("forbidden")

	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrEncryption is the root of every envelope seal or open failure.
	ErrEncryption = errors.New("encryption error")

	// ErrPersistence is the root of sink and store write failures.
	ErrPersistence = errors.New("persistence error")
)

// Re-exported so that callers need a single errors import.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Wrap prefixes err with message. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted prefix.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}
