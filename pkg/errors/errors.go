// Package errors provides structured error types for htdecomp.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the search engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - NETWORK_*: Network-related errors
//   - Consistency codes (MONOTONICITY_VIOLATED, SUPEREDGE_NOT_FOUND, ...):
//     a decomposition run reached an impossible state and was aborted
//
// A search that finds no decomposition is not an error. Search code reports
// it as a nil tree together with a nil error; the codes below are reserved for
// bad input and for broken internal invariants.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidWidth, "width must be positive, got %d", k)
//	if errors.Is(err, errors.ErrCodeInvalidWidth) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeFileNotFound, origErr, "open %s", path)
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
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidWidth     Code = "INVALID_WIDTH"
	ErrCodeInvalidAlgorithm Code = "INVALID_ALGORITHM"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeRunNotFound  Code = "RUN_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Decomposition consistency errors
	ErrCodeMonotonicity      Code = "MONOTONICITY_VIOLATED"
	ErrCodeSuperedgeNotFound Code = "SUPEREDGE_NOT_FOUND"
	ErrCodeUncoverable       Code = "UNCOVERABLE"
	ErrCodeCutNodeUnsolved   Code = "CUT_NODE_UNSOLVED"

	// A decomposition read back from storage fails its checks
	ErrCodeVerifyFailed Code = "VERIFY_FAILED"

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
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Code() == code
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
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Code()
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

// IsConsistency reports whether err signals a broken decomposition invariant
// rather than bad input.
func IsConsistency(err error) bool {
	switch GetCode(err) {
	case ErrCodeMonotonicity, ErrCodeSuperedgeNotFound, ErrCodeUncoverable, ErrCodeCutNodeUnsolved, ErrCodeInternal:
		return true
	}
	return false
}

// SyntaxError locates a malformed token in a textual hypergraph description.
type SyntaxError struct {
	Line    int // 1-based
	Column  int // 1-based
	Message string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return "syntax error: " + e.Message
}

// Code returns the error code for this error type.
func (e *SyntaxError) Code() Code {
	return ErrCodeInvalidFormat
}
