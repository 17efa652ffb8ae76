// Package apperr defines the error taxonomy shared by services and handlers.
//
// Every error a service hands back to a handler is either an *Error (a client
// problem with a known status) or an internal failure that surfaces as 500.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

// Error carries a machine-readable code and a client-safe message.
// Cause is for server-side logs only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Code so that sentinel errors still compare equal after
// being wrapped with a cause or field details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Status maps the error kind to an HTTP status code.
// Conflicts (duplicate email) are reported as 400 to match the public API contract.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

// InvalidFields builds a validation error with per-field messages.
func InvalidFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_failed", Message: msg, Fields: fields}
}

func Unauthorized(code, msg string) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: msg}
}

func Forbidden(code, msg string) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Message: msg}
}

func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

// Internal wraps an unexpected failure. The cause never reaches the client.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: "internal_error", Message: "an unexpected error occurred", Cause: cause}
}

// As extracts the *Error from err's chain, or nil.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// StatusOf returns the HTTP status for any error; unknown errors are 500.
func StatusOf(err error) int {
	if ae := As(err); ae != nil {
		return ae.Status()
	}
	return http.StatusInternalServerError
}
