package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the uniform failure envelope and the
// HTTP status mapping in the handlers.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindUpstream     Kind = "upstream_error"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal_error"
)

// Error carries a kind alongside the human message
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying cause available through errors.Unwrap
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Validation(message string) *Error   { return New(KindValidation, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func InvalidState(message string) *Error { return New(KindInvalidState, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

func Upstream(message string, cause error) *Error {
	return Wrap(KindUpstream, message, cause)
}

func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// KindOf extracts the kind from any error, defaulting to internal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
