package Relay

import (
	"errors"
	"net/http"
)

// Kind classifies why a submission was not delivered.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindRateLimit
	KindTransport
	KindStore
)

// Sentinels usable with errors.Is.
var (
	ErrMissingFields = &Error{Kind: KindValidation}
	ErrRateLimited   = &Error{Kind: KindRateLimit}
	ErrEmailFailed   = &Error{Kind: KindTransport}
	ErrUnavailable   = &Error{Kind: KindStore}
)

// Error is returned by SubmitContact. Err holds the internal cause and is
// only ever logged.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Message is the text safe to show to the caller.
func (e *Error) Message() string {
	switch e.Kind {
	case KindValidation:
		return "Missing fields"
	case KindRateLimit:
		return "Too many requests"
	case KindTransport:
		return "Email failed"
	case KindStore:
		return "Service unavailable"
	default:
		return "Internal error"
	}
}

// Status is the HTTP status reported for this kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// StatusOf maps the result of SubmitContact to an HTTP status.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the caller-facing text for err, never the cause.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return "Internal error"
}
