// Package errs defines the error taxonomy shared by the matcher, differ and SQL
// generator: a small, closed set of error kinds, each surfaced synchronously to the
// caller and never suppressed or reinterpreted.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// InvalidInput: a null/empty required argument, or an empty identifier.
	InvalidInput Kind = iota
	// InvariantViolation: a pairing references an object absent from the target or
	// source database model.
	InvariantViolation
	// UnhandledOperation: the SQL generator encountered an operation or expression
	// variant it does not recognize.
	UnhandledOperation
	// UnsupportedDialectFeature: a dialect does not implement a given operation.
	UnsupportedDialectFeature
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case InvariantViolation:
		return "InvariantViolation"
	case UnhandledOperation:
		return "UnhandledOperation"
	case UnsupportedDialectFeature:
		return "UnsupportedDialectFeature"
	default:
		return "Unknown"
	}
}

// Error is a typed, wrapped error carrying a Kind alongside the usual error chain.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, InvalidInputErr) style checks work against a bare Kind
// sentinel produced by New with no message, by comparing Kind fields.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Kind == te.Kind
	}
	return false
}

// New builds an *Error of the given kind with a formatted message and no wrapped
// cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// OfKind reports whether err is (or wraps) an *Error of the given kind.
func OfKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
