// Package errors provides structured error types for the sensala viewer.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI, TUI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The interpretation flow distinguishes three failure families:
//   - TRANSPORT_FAILURE: the remote call did not complete
//   - CONTRACT_VIOLATION: the response or a tree payload has the wrong shape
//   - DEGENERATE_LAYOUT: a zero-sized graph or surface reached the fitter
//
// Input validation uses INVALID_*, and superseded responses are tagged
// STALE_RESPONSE.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeContractViolation, "expected 3 results, got %d", n)
//	if errors.Is(err, errors.ErrCodeContractViolation) {
//	    // Handle malformed response
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeTransport, origErr, "POST %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDiscourse Code = "INVALID_DISCOURSE"
	ErrCodeInvalidSurface   Code = "INVALID_SURFACE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Interpretation flow errors
	ErrCodeTransport         Code = "TRANSPORT_FAILURE"
	ErrCodeContractViolation Code = "CONTRACT_VIOLATION"
	ErrCodeDegenerateLayout  Code = "DEGENERATE_LAYOUT"
	ErrCodeStale             Code = "STALE_RESPONSE"
	ErrCodeTimeout           Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// The outermost *Error wins, so a contract violation wrapped as a transport
// failure reports TRANSPORT_FAILURE.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInterpretationFailure reports whether err belongs to the failure families
// that end an interpretation without touching the displayed result:
// transport failures, contract violations and timeouts.
func IsInterpretationFailure(err error) bool {
	switch GetCode(err) {
	case ErrCodeTransport, ErrCodeContractViolation, ErrCodeTimeout:
		return true
	}
	return false
}
