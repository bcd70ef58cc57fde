// Package apperror defines the tagged error kinds used across the service.
// Handlers map an error's kind to an HTTP status instead of matching on
// message text, so user-facing wording can change without breaking control
// flow.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the category of a service error.
type Kind string

const (
	// KindValidation marks malformed or missing input supplied by the caller.
	KindValidation Kind = "validation"
	// KindNotFound marks a lookup by a key that does not exist.
	KindNotFound Kind = "not_found"
	// KindConflict marks a natural-key collision.
	KindConflict Kind = "conflict"
	// KindUpload marks a rejected file upload (missing or oversized).
	KindUpload Kind = "upload"
	// KindInternal marks storage failures and other unexpected conditions.
	// Its details are logged server-side and never shown to clients.
	KindInternal Kind = "internal"
)

// Error is a service error carrying a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error with the given kind and a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error. It returns nil if
// err is nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// KindOf extracts the kind of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error to the HTTP status code it should be reported
// with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindUpload:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message safe to show to a client. Internal errors
// are replaced by a generic message so that stack traces, SQL text and file
// paths never leak.
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
