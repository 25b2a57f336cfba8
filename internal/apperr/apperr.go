// Package apperr defines the tagged error variants shared by the auth flow,
// the API client and the chat dispatcher.
//
// The UI may collapse several kinds into one message (login does), but the
// kind is always preserved so callers can tell causes apart with Is or KindOf.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by where it originated.
type Kind string

const (
	// KindValidation is rejected input that never reached the network.
	KindValidation Kind = "validation"

	// KindAuth is a failed registration or login, including an unreachable auth service.
	KindAuth Kind = "auth"

	// KindService is an error payload returned by a remote service.
	KindService Kind = "service"

	// KindTransport is a call that could not complete or a response that could not be decoded.
	KindTransport Kind = "transport"
)

// Error is a classified error carrying a user-visible message.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "login" or "chat".
	Op string
	// Message is safe to show to the end user. It may be empty.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a KindValidation error.
func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// Auth returns a KindAuth error wrapping cause.
func Auth(op, message string, cause error) *Error {
	return &Error{Kind: KindAuth, Op: op, Message: message, Err: cause}
}

// Service returns a KindService error carrying the server-provided message.
func Service(op, message string) *Error {
	return &Error{Kind: KindService, Op: op, Message: message}
}

// Transport returns a KindTransport error wrapping cause.
func Transport(op string, cause error) *Error {
	return &Error{Kind: KindTransport, Op: op, Err: cause}
}

// KindOf returns the kind of the outermost *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether any *Error in err's chain has the given kind.
// An auth error caused by a transport failure matches both kinds.
func Is(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// Message returns the user-visible message of the outermost *Error in err's
// chain, or fallback when there is none or it is empty.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
