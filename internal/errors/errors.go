// Package errors provides standardized domain errors with codes for the catalog layer.
//
// Usage:
//
//	// In the repository - return typed errors
//	if !book.Decorated() {
//	    return errors.NotDecorated("labels read before decoration")
//	}
//
//	// In callers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    // referenced row is gone: data corruption, surface it
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the catalog.
const (
	// CodeNotDecorated flags a label read or write on a book whose label
	// collection was never loaded. Programmer error, not a runtime condition.
	CodeNotDecorated Code = "NOT_DECORATED"

	// CodeCacheInconsistency means the label cache and the store's unique
	// constraint disagree. Fatal: the interning assumption was violated.
	CodeCacheInconsistency Code = "CACHE_INCONSISTENCY"

	// CodeNotFound means a referenced row is missing from the store. For
	// label ids reachable from join rows this indicates corruption.
	CodeNotFound Code = "NOT_FOUND"

	// CodeTooManyFilters rejects a query carrying more than MaxFilters
	// label filters before any I/O happens.
	CodeTooManyFilters Code = "TOO_MANY_FILTERS"

	CodeValidation Code = "VALIDATION"
	CodeStore      Code = "STORE"
	CodeInternal   Code = "INTERNAL"
)

// Fatal reports whether errors with this code indicate data corruption
// rather than a recoverable condition.
func (c Code) Fatal() bool {
	return c == CodeCacheInconsistency || c == CodeNotFound
}

// Error is a domain error with a code, message, and optional cause.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotDecorated       = &Error{Code: CodeNotDecorated, Message: "book labels not decorated"}
	ErrCacheInconsistency = &Error{Code: CodeCacheInconsistency, Message: "label cache inconsistency"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrTooManyFilters     = &Error{Code: CodeTooManyFilters, Message: "too many filters"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrStore              = &Error{Code: CodeStore, Message: "store error"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotDecorated creates a not decorated error.
func NotDecorated(msg string) *Error {
	return &Error{Code: CodeNotDecorated, Message: msg}
}

// CacheInconsistency creates a cache inconsistency error.
func CacheInconsistency(msg string) *Error {
	return &Error{Code: CodeCacheInconsistency, Message: msg}
}

// CacheInconsistencyf creates a cache inconsistency error with formatted message.
func CacheInconsistencyf(format string, args ...any) *Error {
	return &Error{Code: CodeCacheInconsistency, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// TooManyFilters creates a too many filters error.
func TooManyFilters(msg string) *Error {
	return &Error{Code: CodeTooManyFilters, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Store wraps an underlying persistence failure.
func Store(err error, msg string) *Error {
	return &Error{Code: CodeStore, Message: msg, cause: err}
}

// Storef wraps an underlying persistence failure with formatted message.
func Storef(err error, format string, args ...any) *Error {
	return &Error{Code: CodeStore, Message: fmt.Sprintf(format, args...), cause: err}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
