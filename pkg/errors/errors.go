// Package errors provides structured error types for swapnet.
//
// The package defines machine-readable error codes so that the CLI and
// library callers can react to failure classes without matching on
// message text:
//   - INVALID_ARGUMENT: a descriptor or parameter failed validation
//   - NOT_CONNECTED: an imported topology is not weakly connected
//   - COULD_NOT_CONSTRUCT: the random-topology factory exhausted its retries
//   - IO_ERROR: a file could not be opened or written
//   - INVALID_SCENARIO: a scenario file is malformed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "node index %d out of range", idx)
//	if errors.Is(err, errors.ErrCodeInvalidArgument) {
//	    // handle validation failure
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure classes surfaced by the library.
const (
	ErrCodeInvalidArgument   Code = "INVALID_ARGUMENT"
	ErrCodeNotConnected      Code = "NOT_CONNECTED"
	ErrCodeCouldNotConstruct Code = "COULD_NOT_CONSTRUCT"
	ErrCodeIO                Code = "IO_ERROR"
	ErrCodeInvalidScenario   Code = "INVALID_SCENARIO"
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

// Is reports whether err carries the given error code.
// It unwraps the error chain to the first *Error and compares its code;
// *Error values nested deeper in the chain are not consulted.
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
