// Package errors defines the typed failures returned by PDF tool operations.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// Kind categorizes a tool failure
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindSecurity
	KindPassword
	KindProcessing
	KindInternal
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindSecurity:
		return "SECURITY"
	case KindPassword:
		return "PASSWORD"
	case KindProcessing:
		return "PROCESSING"
	case KindInternal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// HTTPStatus maps the kind onto the status code used by the HTTP API
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindSecurity:
		return http.StatusForbidden
	case KindPassword:
		return http.StatusUnauthorized
	case KindProcessing:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ToolError is the error type returned by every tool operation.
// Message is safe to show to an end user; Cause carries the library error.
type ToolError struct {
	Kind      Kind      `json:"kind"`
	Tool      string    `json:"tool"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface
func (e *ToolError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ToolError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches extra detail to the error
func (e *ToolError) WithDetails(format string, args ...interface{}) *ToolError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// New creates a ToolError of the given kind
func New(kind Kind, tool, message string, cause error) *ToolError {
	return &ToolError{
		Kind:      kind,
		Tool:      tool,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// Validation reports bad input: empty selections, out-of-range pages, bad options
func Validation(tool, format string, args ...interface{}) *ToolError {
	return New(KindValidation, tool, fmt.Sprintf(format, args...), nil)
}

// NotFound reports a missing input file
func NotFound(tool, path string) *ToolError {
	return New(KindNotFound, tool, fmt.Sprintf("file does not exist: %s", path), nil)
}

// Security reports a path that escapes the workspace
func Security(tool string, cause error) *ToolError {
	return New(KindSecurity, tool, "security validation failed", cause)
}

// Password reports a missing or wrong document password
func Password(tool string, cause error) *ToolError {
	return New(KindPassword, tool, "The password is incorrect or the file is protected.", cause)
}

// Processing reports a library failure with the tool's user-facing message
func Processing(tool, message string, cause error) *ToolError {
	return New(KindProcessing, tool, message, cause)
}

// Internal reports a failure unrelated to the input document
func Internal(tool string, cause error) *ToolError {
	return New(KindInternal, tool, "internal error", cause)
}

// KindOf returns the Kind of err, or KindUnknown if err is not a ToolError
func KindOf(err error) Kind {
	var te *ToolError
	if stderrors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// Is reports whether err is a ToolError of the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusCode returns the HTTP status for err
func StatusCode(err error) int {
	return KindOf(err).HTTPStatus()
}
