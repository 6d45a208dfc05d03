// Package errors provides error handling for ontoforge.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Marking errors with reference errors
var (
	Mark = crdb.Mark
)

// Common sentinel errors for use across ontoforge.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates the requested resource does not exist:
	// an unknown repository registration or a repository without any
	// recognized ontology document.
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")

	// ErrAuthentication indicates a webhook signature mismatch or a
	// secret that failed authenticated decryption.
	ErrAuthentication = New("authentication failed")

	// ErrUpstream indicates a non-success response from the source host
	// or the shared store.
	ErrUpstream = New("upstream request failed")

	// ErrConfiguration indicates invalid startup configuration. Fatal;
	// there is no recovery path.
	ErrConfiguration = New("invalid configuration")
)

// IsNotFound checks if an error is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsAuthentication checks if an error is or wraps ErrAuthentication.
func IsAuthentication(err error) bool {
	return err != nil && Is(err, ErrAuthentication)
}

// IsUpstream checks if an error is or wraps ErrUpstream.
func IsUpstream(err error) bool {
	return err != nil && Is(err, ErrUpstream)
}
