// Package errors provides structured error types for herobook.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so the CLI and the HTTP service can report it consistently:
//
//   - INVALID_*: request validation failures (never retried, HTTP 4xx)
//   - ASSET_RESOLUTION / EMBED_FAILED: per-asset failures the compositor absorbs
//   - DOCUMENT_BUILD: unrecoverable PDF finalization failures (HTTP 5xx)
//   - STORAGE_FAILED: upload failures after a successful render (HTTP 5xx)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "manuscript must have %d pages", 14)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
//	err := errors.Wrap(errors.ErrCodeDocumentBuild, cause, "finalize book.pdf")
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
	ErrCodeInvalidInput          Code = "INVALID_INPUT"
	ErrCodeInvalidOrderID        Code = "INVALID_ORDER_ID"
	ErrCodeInvalidPath           Code = "INVALID_PATH"
	ErrCodeUnresolvedPlaceholder Code = "UNRESOLVED_PLACEHOLDER"

	// Asset errors (recovered locally by the compositor)
	ErrCodeAssetResolution Code = "ASSET_RESOLUTION"
	ErrCodeEmbed           Code = "EMBED_FAILED"

	// Output errors
	ErrCodeDocumentBuild Code = "DOCUMENT_BUILD"
	ErrCodeStorage       Code = "STORAGE_FAILED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeConflict Code = "CONFLICT"
	ErrCodeTooLarge Code = "REQUEST_TOO_LARGE"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// Only the outermost *Error in the chain is consulted, so a wrapped
// validation error reported as a storage failure is a storage failure.
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

// IsValidation reports whether err is one of the input validation codes.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidOrderID, ErrCodeInvalidPath, ErrCodeUnresolvedPlaceholder:
		return true
	}
	return false
}

// HTTPStatus maps an error to the status code the HTTP service reports.
// Validation failures are 4xx; build, storage and unknown failures are 5xx.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if IsValidation(err) {
		return http.StatusBadRequest
	}
	switch GetCode(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
