// Package errors provides structured error types for plotmap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the terminal viewer and the server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *NOT_FOUND: Unknown parcel, session or resource
//   - LAYOUT_*: Site plan construction bugs
//   - INTERNAL_*: Unexpected internal errors
//
// Gesture input is never an error: out-of-range zoom and malformed search text
// are normalized by the owning component, so the taxonomy stays narrow.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParcelNotFound, "parcel %d not found", id)
//	if errors.Is(err, errors.ErrCodeParcelNotFound) {
//	    // Render an empty card
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "render %s", format)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidEvent  Code = "INVALID_EVENT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeParcelNotFound  Code = "PARCEL_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Site plan errors
	ErrCodeLayoutInvalid Code = "LAYOUT_INVALID"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeClosed      Code = "CLOSED"
	ErrCodeUnavailable Code = "UNAVAILABLE"
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
// The generic NOT_FOUND code also matches the more specific not-found codes.
func Is(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == code {
		return true
	}
	return code == ErrCodeNotFound && IsNotFound(e.Code)
}

// IsNotFound reports whether code is one of the not-found codes.
func IsNotFound(code Code) bool {
	switch code {
	case ErrCodeNotFound, ErrCodeParcelNotFound, ErrCodeSessionNotFound:
		return true
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

// HTTPStatus maps an error to the HTTP status code the server responds with.
// Errors without a code are treated as internal failures.
func HTTPStatus(err error) int {
	code := GetCode(err)
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(code):
		return http.StatusNotFound
	case code == ErrCodeInvalidInput, code == ErrCodeInvalidFormat,
		code == ErrCodeInvalidEvent, code == ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case code == ErrCodeUnsupported:
		return http.StatusNotImplemented
	case code == ErrCodeClosed:
		return http.StatusGone
	case code == ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
