// Package apperr defines the typed error kinds the HTTP boundary maps to
// status codes (spec.md §7), grounded in the teacher's domain-error +
// response.FromDomainError pattern (internal/http/response.go).
package apperr

import "errors"

// Kind classifies an error for the HTTP boundary's status-code mapping.
type Kind string

const (
	KindInvalidInput   Kind = "invalid_input"
	KindNotFound       Kind = "not_found"
	KindDuplicateID    Kind = "duplicate_id"
	KindInvalidPattern Kind = "invalid_pattern"
	KindConflict       Kind = "conflict"
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindRateLimited    Kind = "rate_limited"
	KindStoreError     Kind = "store_error"
	KindTransient      Kind = "transient"
)

// Error pairs a Kind with the underlying cause, the shape every layer above
// internal/model propagates synchronously (spec.md §7).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind wrapping cause, using cause's own
// message unless message is non-empty.
func Wrap(kind Kind, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, defaulting to KindStoreError — an unclassified error is treated
// as an internal failure, never leaked as a 400.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreError
}
