package model

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind rather than matching error strings.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindConnection: the conductor could not be reached or dropped the call.
	KindConnection Kind = "Connection"
	// KindRemote: the conductor or a zome returned a structured failure.
	KindRemote Kind = "Remote"
	// KindProtocolMismatch: a response did not have the expected shape.
	KindProtocolMismatch Kind = "ProtocolMismatch"
	// KindNotFound: a target app or cell does not exist.
	KindNotFound Kind = "NotFound"
	// KindValidation: a local precondition failed before any network I/O.
	KindValidation Kind = "Validation"
)

// Error is the structured error returned by every publishing stage.
//
// Op names what was being attempted: an endpoint for Connection errors, a
// zome function for Remote and ProtocolMismatch errors.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg = msg + ": " + e.Cause.Error()
		}
	}
	if e.Op == "" {
		return fmt.Sprintf("%s error: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Kind, e.Op, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ConnectionError reports that endpoint could not be reached.
func ConnectionError(endpoint string, cause error) error {
	return &Error{Kind: KindConnection, Op: endpoint, Message: "conductor unreachable", Cause: cause}
}

// RemoteError reports a structured failure returned for procedure.
func RemoteError(procedure, message string) error {
	return &Error{Kind: KindRemote, Op: procedure, Message: message}
}

// ProtocolMismatchError reports an unexpected response shape for procedure.
func ProtocolMismatchError(procedure, message string, cause error) error {
	return &Error{Kind: KindProtocolMismatch, Op: procedure, Message: message, Cause: cause}
}

// NotFoundError reports a missing target.
func NotFoundError(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports a failed local precondition.
func ValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
