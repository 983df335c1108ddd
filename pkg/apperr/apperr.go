// Package apperr defines the error kinds surfaced by the HTTP API.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the transport layer.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUpload       Kind = "upload_failed"
	KindInternal     Kind = "internal"
)

// HTTPStatus returns the response status for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is an API-facing error. Message and Details are safe to return to
// clients; Err is the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a field-level detail and returns the same error.
func (e *Error) WithDetail(field, msg string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[field] = msg
	return e
}

func Validation(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "unauthorized"
	}
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "forbidden"
	}
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	if msg == "" {
		msg = "not found"
	}
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Upload reports a storage adapter failure.
func Upload(err error) *Error {
	return &Error{Kind: KindUpload, Message: "upload failed", Err: err}
}

// Internal wraps an unexpected failure. The cause is never sent to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "server error", Err: err}
}

// From returns err as an *Error, treating anything unrecognised as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
