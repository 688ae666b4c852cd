package log

import (
	"time"
)

// Event represents a status event emitted by a stopwatch or countdown timer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// InstanceID identifies the emitting timer (UUID).
	InstanceID string `cbor:"2,keyasint"`

	// Component is the kind of timer that emitted the event.
	Component Component `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	Transition *TransitionEvent `cbor:"5,keyasint,omitempty"`
	Error      *ErrorEventData  `cbor:"6,keyasint,omitempty"`
}

// Component identifies the kind of timer.
type Component uint8

const (
	// ComponentStopwatch is a pausable elapsed-time stopwatch.
	ComponentStopwatch Component = 0
	// ComponentCountdown is a one-shot countdown timer.
	ComponentCountdown Component = 1
)

// String returns the component name.
func (c Component) String() string {
	switch c {
	case ComponentStopwatch:
		return "STOPWATCH"
	case ComponentCountdown:
		return "COUNTDOWN"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a state transition.
	CategoryState Category = 0
	// CategoryError indicates a rejected operation.
	CategoryError Category = 1
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Operation names the timer operation that produced an event.
type Operation uint8

const (
	OpStart Operation = iota
	OpSuspend
	OpResume
	OpStop
	OpReset
	OpSet
	OpExpire
	OpCancel
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpStart:
		return "START"
	case OpSuspend:
		return "SUSPEND"
	case OpResume:
		return "RESUME"
	case OpStop:
		return "STOP"
	case OpReset:
		return "RESET"
	case OpSet:
		return "SET"
	case OpExpire:
		return "EXPIRE"
	case OpCancel:
		return "CANCEL"
	default:
		return "UNKNOWN"
	}
}

// TransitionEvent captures a completed operation.
type TransitionEvent struct {
	// Op is the operation performed.
	Op Operation `cbor:"1,keyasint"`

	// OldState is the state before the operation.
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the state after the operation.
	NewState string `cbor:"3,keyasint"`

	// Elapsed is the stopwatch's accumulated duration after the operation.
	Elapsed *time.Duration `cbor:"4,keyasint,omitempty"`

	// Suspended is how long the stopwatch was suspended (resume only).
	Suspended *time.Duration `cbor:"5,keyasint,omitempty"`

	// Configured is the countdown's target duration.
	Configured *time.Duration `cbor:"6,keyasint,omitempty"`

	// Remaining is the countdown's remaining duration (expire/cancel).
	Remaining *time.Duration `cbor:"7,keyasint,omitempty"`
}

// ErrorEventData captures a rejected operation.
type ErrorEventData struct {
	// Op is the operation that was rejected.
	Op Operation `cbor:"1,keyasint"`

	// Kind is the error kind ("invalid state", "invalid argument").
	Kind string `cbor:"2,keyasint"`

	// Message is the violated precondition.
	Message string `cbor:"3,keyasint"`

	// State is the timer state at the time of the error.
	State string `cbor:"4,keyasint,omitempty"`
}

// DurationPtr returns a pointer to d, for populating optional event fields.
func DurationPtr(d time.Duration) *time.Duration {
	return &d
}
