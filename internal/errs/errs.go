// Package errs provides the structured error types shared across the
// assembly pipeline.
//
// Error codes map one-to-one onto the failure categories surfaced to
// callers:
//
//	err := errs.New(errs.ErrCodePackaging, "duplicate manifest id %q", id)
//	if errs.Is(err, errs.ErrCodePackaging) {
//	    // handle packaging failure
//	}
//
//	// Wrap existing errors
//	err := errs.Wrap(errs.ErrCodeAssetFetch, origErr, "failed to fetch %s", url)
package errs

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the pipeline failure categories.
const (
	// ErrCodeGeneration covers failed plan, content, proofread, or image
	// generation stages.
	ErrCodeGeneration Code = "GENERATION_FAILED"

	// ErrCodeAssetFetch covers failures retrieving remote images or fonts.
	ErrCodeAssetFetch Code = "ASSET_FETCH_FAILED"

	// ErrCodeRasterization covers page capture and paginated assembly
	// failures.
	ErrCodeRasterization Code = "RASTERIZATION_FAILED"

	// ErrCodePackaging covers e-book archive construction failures.
	ErrCodePackaging Code = "PACKAGING_FAILED"

	// ErrCodeInvalidBook covers book records that fail validation before
	// any artifact work starts.
	ErrCodeInvalidBook Code = "INVALID_BOOK"
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

// Is reports whether err carries the given error code anywhere in its
// chain.
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
