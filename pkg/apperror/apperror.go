// Package apperror defines the structured rejections returned by the auth core
// and the task service. Each error carries a stable Kind tag; the HTTP boundary
// maps every kind to exactly one status code and body shape.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is the stable tag of a rejection.
type Kind string

const (
	KindMalformed    Kind = "malformed"
	KindBadSignature Kind = "bad_signature"
	KindExpired      Kind = "expired"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindInvalid      Kind = "invalid"
	KindInternal     Kind = "internal"
)

// Error is a rejection with a kind, a client-safe message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match when target is an *Error of the same kind, so sentinels
// can be compared with errors.Is regardless of message or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New returns a rejection of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap returns a rejection of the given kind that keeps err as its cause.
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the kind of err. Errors that are not rejections are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// IsAuthFailure reports whether err is any of the kinds that collapse into an
// external 401.
func IsAuthFailure(err error) bool {
	switch KindOf(err) {
	case KindMalformed, KindBadSignature, KindExpired, KindUnauthorized:
		return true
	}
	return false
}

// Sentinels.
var (
	ErrMalformed    = New(KindMalformed, "token is malformed")
	ErrBadSignature = New(KindBadSignature, "token signature is invalid")
	ErrExpired      = New(KindExpired, "token is expired")
	ErrUnauthorized = New(KindUnauthorized, "unauthorized")
	ErrConflict     = New(KindConflict, "conflict")
	ErrNotFound     = New(KindNotFound, "not found")
	ErrInvalid      = New(KindInvalid, "invalid input")
	ErrInternal     = New(KindInternal, "internal server error")
)
