package core

import (
	"errors"
	"fmt"
)

// ErrKind is the fixed taxonomy of error kinds the engine can raise,
// per the error handling design: callers switch on Kind rather than
// matching message text.
type ErrKind string

const (
	ErrInvalidConfig    ErrKind = "InvalidConfig"
	ErrInvalidInterval  ErrKind = "InvalidInterval"
	ErrEmptyNonTemporal ErrKind = "EmptyNonTemporal"
	ErrCatalogError     ErrKind = "CatalogError"
	ErrExecutionError   ErrKind = "ExecutionError"
	ErrIOError          ErrKind = "IOError"
)

// Error is a kinded error: every failure the engine raises carries one
// of the ErrKind values above plus an optional wrapped cause.
type Error struct {
	Kind ErrKind
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

// NewError builds a kinded error with a formatted message and no cause.
func NewError(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError builds a kinded error wrapping cause, unless cause is nil,
// in which case it returns nil — useful as `return core.WrapError(...)`
// directly on the result of a fallible call.
func WrapError(kind ErrKind, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf reports the ErrKind of err if it (or something it wraps) is a
// *Error, and false otherwise.
func KindOf(err error) (ErrKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether the first *Error in err's chain carries the given
// kind; a *Error of another kind wrapped further down is not checked.
func Is(err error, kind ErrKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
