// Package timeerr defines the error kinds shared by the stopwatch and
// countdown packages.
//
// Every failure is an *Error whose Kind is one of the sentinels below, so
// callers match with errors.Is:
//
//	if _, err := sw.Stop(); errors.Is(err, timeerr.ErrInvalidState) {
//	    // stopwatch was not started
//	}
package timeerr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrInvalidArgument is returned when a configuration value is out of range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidState is returned when an operation is invoked in a state
	// that does not allow it.
	ErrInvalidState = errors.New("invalid state")
)

// Error carries the failed operation and the violated precondition.
type Error struct {
	// Kind is ErrInvalidArgument or ErrInvalidState.
	Kind error

	// Op is the operation that failed (e.g. "start", "set").
	Op string

	// Message describes the violated precondition.
	Message string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// InvalidState returns an ErrInvalidState error for op.
func InvalidState(op, msg string) *Error {
	return &Error{Kind: ErrInvalidState, Op: op, Message: msg}
}

// InvalidArgument returns an ErrInvalidArgument error for op.
func InvalidArgument(op, msg string) *Error {
	return &Error{Kind: ErrInvalidArgument, Op: op, Message: msg}
}

// IsInvalidState reports whether err is an ErrInvalidState error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsInvalidArgument reports whether err is an ErrInvalidArgument error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
