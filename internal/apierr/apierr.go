// Package apierr defines the structured error taxonomy shared by the
// gateway, the CLI, and the TUI. Errors carry a machine-readable code,
// a human-readable message, and optional details for JSON output.
package apierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error code constants, uppercase and underscore-separated.
const (
	ValidationError = "VALIDATION_ERROR"
	NotFound        = "NOT_FOUND"
	ServerError     = "SERVER_ERROR"
	TransportError  = "TRANSPORT_ERROR"
	InvalidInput    = "INVALID_INPUT"
	ConfigError     = "CONFIG_ERROR"
	NoChanges       = "NO_CHANGES"
	ConfirmationReq = "CONFIRMATION_REQUIRED"
	InternalError   = "INTERNAL_ERROR"
)

// Error represents a structured error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error whose message includes the underlying cause.
func Wrap(code string, err error, context string) *Error {
	return &Error{Code: code, Message: context + ": " + err.Error()}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// Code returns the structured code of err, or InternalError for plain errors.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// Is reports whether err is a structured error with the given code.
func Is(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsNotFound reports whether err means the referenced task no longer exists.
func IsNotFound(err error) bool { return Is(err, NotFound) }

// IsValidation reports whether err is a user-correctable input rejection.
func IsValidation(err error) bool { return Is(err, ValidationError) }

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool { return Is(err, TransportError) }

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
