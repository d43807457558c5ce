// Package errors provides structured error types for lethalposters.
//
// Every failure the batch can hit maps onto one machine-readable Code, so the
// CLI can print a friendly message while tests and callers match on the
// category with [Is].
//
// # Error Codes
//
//   - INVALID_CONFIG: format, compression or worker values out of range
//   - TEMPLATE_LOAD: a template is missing, undecodable or too small
//   - INPUT_DECODE: a discovered input image could not be decoded
//   - EMPTY_SOURCE: no input images were discovered
//   - CYCLIC_INDEX: the image source was indexed outside its invariant
//   - PERSISTENCE: a composited image could not be written
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "format %d out of range", f)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // exit non-zero without touching the output tree
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the batch.
const (
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeTemplateLoad  Code = "TEMPLATE_LOAD"
	ErrCodeInputDecode   Code = "INPUT_DECODE"
	ErrCodeEmptySource   Code = "EMPTY_SOURCE"
	ErrCodeCyclicIndex   Code = "CYCLIC_INDEX"
	ErrCodePersistence   Code = "PERSISTENCE"
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
// It unwraps the error chain looking for an *Error or *PersistenceError
// with a matching code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the chain holds no coded error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// PersistenceError reports a failed write of one composited output.
type PersistenceError struct {
	Index    int    // input index being processed
	Category string // posters, tips or paintings
	Path     string
	Err      error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save %s #%d (%s): %v", e.Category, e.Index, e.Path, e.Err)
}

// Unwrap returns the underlying write error.
func (e *PersistenceError) Unwrap() error { return e.Err }

// Code returns the error code for this error type.
func (e *PersistenceError) Code() Code {
	return ErrCodePersistence
}
