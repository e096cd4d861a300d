// Package apperror defines the error kinds shared by the scheduling core.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for HTTP mapping.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindBusinessNotActive Kind = "BUSINESS_NOT_ACTIVE"
	KindServiceNotActive  Kind = "SERVICE_NOT_ACTIVE"
	KindBusinessClosed    Kind = "BUSINESS_CLOSED"
	KindOutsideHours      Kind = "OUTSIDE_HOURS"
	KindDuringBreak       Kind = "DURING_BREAK"
	KindSlotUnavailable   Kind = "SLOT_UNAVAILABLE"
	KindDateInPast        Kind = "DATE_IN_PAST"
	KindTimeInPast        Kind = "TIME_IN_PAST"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindForbidden         Kind = "ACCESS_DENIED"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindInternal          Kind = "INTERNAL"
)

// Error carries a kind plus a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Internal wraps an unexpected error (storage failures and the like).
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: cause}
}

// KindOf extracts the kind from err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether the caller may retry after refetching availability.
// Only slot conflicts qualify; a blind retry of the identical request is never useful.
func Retryable(err error) bool {
	return IsKind(err, KindSlotUnavailable)
}

// HTTPStatus maps an error kind to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindSlotUnavailable:
		return http.StatusConflict
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
