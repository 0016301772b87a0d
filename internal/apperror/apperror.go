// Package apperror defines the failure taxonomy shared by handlers, the
// validation layer and the session guard.  Every failure that reaches the
// HTTP layer is either an *Error carrying a Kind or an unanticipated error,
// which the response mapper treats as Internal.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.  The response mapper is the only place that
// turns a Kind into an HTTP status code.
type Kind int

const (
	KindInternal Kind = iota
	KindMalformed
	KindValidation
	KindUnauthenticated
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// FieldError names one violated constraint on an inbound payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a classified failure.  Message is safe to show to callers; Err
// holds the underlying cause for the operational log only.
type Error struct {
	Kind    Kind
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Malformed reports a request body that could not be parsed at all.
func Malformed(err error) *Error {
	return &Error{Kind: KindMalformed, Message: "malformed request body", Err: err}
}

// Validation reports schema violations.  details must list every field.
func Validation(details []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Details: details}
}

// Unauthenticated reports a missing or logged-out session.
func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = "authentication required"
	}
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// NotFound reports a missing entity, e.g. NotFound("floor plan").
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Conflict reports a uniqueness violation.
func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// RateLimited reports that the caller exhausted its request budget.
func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Message: "rate limit exceeded"}
}

// KindOf returns the Kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
