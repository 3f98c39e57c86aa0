package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the HTTP layer can map it to a
// status code without inspecting error strings.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error carries a kind, a short user-safe message and an optional cause.
// The cause is for server-side logs only and is never serialized.
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

func NotFound(msg string) *Error            { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error           { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error            { return &Error{Kind: KindConflict, Message: msg} }
func Validation(msg string) *Error          { return &Error{Kind: KindValidation, Message: msg} }
func Internal(msg string, err error) *Error { return &Error{Kind: KindInternal, Message: msg, Err: err} }

// KindOf extracts the kind from err, defaulting to KindInternal for plain
// errors such as raw storage failures.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// MessageOf returns the user-safe message for err. Internal errors get a
// generic message so storage details never reach the caller.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return "internal server error"
}
