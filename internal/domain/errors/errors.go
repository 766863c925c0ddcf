// Package errors defines the client's domain error values. Handlers and
// deliveries match them with errors.Is to decide how a failure is presented.
package errors

import (
	"studybuddy/internal/errors"
)

// ClientError is a domain error with a stable machine code and a
// human-readable message suitable for direct display.
type ClientError struct {
	code    string
	message string
}

// NewClientError creates a new domain error value.
func NewClientError(code, message string) *ClientError {
	return &ClientError{code: code, message: message}
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	return e.message
}

// Code returns the stable business error code.
func (e *ClientError) Code() string {
	return e.code
}

// Message returns the user-facing error message.
func (e *ClientError) Message() string {
	return e.message
}

// WrapMessage wraps the error with additional context message.
func (e *ClientError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

var (
	// ErrUnauthenticated is surfaced when an operation still fails auth after
	// the refresh cycle has run its course.
	ErrUnauthenticated = NewClientError("UNAUTHENTICATED", "authentication required")

	// ErrRefreshFailed covers any refresh outcome other than HTTP 200: a
	// missing refresh token, a rejected one, or a transport failure. All of
	// them purge the stored credentials and force logout.
	ErrRefreshFailed = NewClientError("REFRESH_FAILED", "session expired, please sign in again")

	// ErrValidationFailed is reported before any network call when required
	// input is missing or malformed.
	ErrValidationFailed = NewClientError("VALIDATION_FAILED", "please fill in all required fields")

	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = NewClientError("NOT_FOUND", "resource not found")

	// ErrServerRejected carries a server-provided operation error; the
	// wrapped message holds what the server said.
	ErrServerRejected = NewClientError("SERVER_REJECTED", "the server rejected the request")
)
