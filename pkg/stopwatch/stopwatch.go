package stopwatch

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lapwatch/lapwatch-go/pkg/clock"
	"github.com/lapwatch/lapwatch-go/pkg/log"
	"github.com/lapwatch/lapwatch-go/pkg/timeerr"
)

// State represents the stopwatch state.
type State uint8

const (
	// StateNotStarted indicates the stopwatch is idle (fresh, stopped or reset).
	StateNotStarted State = iota

	// StateRunning indicates time is accruing.
	StateRunning

	// StateSuspended indicates the stopwatch is paused and can be resumed.
	StateSuspended
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateRunning:
		return "RUNNING"
	case StateSuspended:
		return "SUSPENDED"
	default:
		return "UNKNOWN"
	}
}

// Option configures a Stopwatch.
type Option func(*Stopwatch)

// WithClock sets the time source. Defaults to clock.Real().
func WithClock(c clock.Clock) Option {
	return func(s *Stopwatch) { s.clock = c }
}

// WithLogger sets the status event logger. Defaults to log.NoopLogger.
func WithLogger(l log.Logger) Option {
	return func(s *Stopwatch) { s.logger = log.OrNoop(l) }
}

// WithID sets the instance ID used in status events. Defaults to a random UUID.
func WithID(id string) Option {
	return func(s *Stopwatch) { s.id = id }
}

// Stopwatch measures accumulated running time with suspend/resume support.
type Stopwatch struct {
	mu sync.RWMutex

	id     string
	clock  clock.Clock
	logger log.Logger

	state State

	// Accumulated duration of all completed running intervals
	totalDuration time.Duration

	// Start of the open running interval. Set to the resume instant after
	// a resume. Only meaningful while running.
	startedAt time.Time

	// Instant of the most recent Start, reported by StartTime while
	// hasStart is set.
	lastStartAt time.Time
	hasStart    bool

	suspendedAt time.Time
	resumedAt   time.Time

	onStateChange func(oldState, newState State)
}

// New creates a stopwatch in StateNotStarted.
func New(opts ...Option) *Stopwatch {
	s := &Stopwatch{
		id:     uuid.NewString(),
		clock:  clock.Real(),
		logger: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the instance ID.
func (s *Stopwatch) ID() string {
	return s.id
}

// OnStateChange sets a callback invoked after every state change.
func (s *Stopwatch) OnStateChange(fn func(oldState, newState State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = fn
}

// State returns the current state.
func (s *Stopwatch) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// IsStarted returns true if the stopwatch is running or suspended.
func (s *Stopwatch) IsStarted() bool {
	return s.State() != StateNotStarted
}

// IsRunning returns true if time is accruing.
func (s *Stopwatch) IsRunning() bool {
	return s.State() == StateRunning
}

// IsSuspended returns true if the stopwatch is paused.
func (s *Stopwatch) IsSuspended() bool {
	return s.State() == StateSuspended
}

// Start begins a running interval.
// Returns an ErrInvalidState error if already running or suspended.
func (s *Stopwatch) Start() error {
	s.mu.Lock()

	old := s.stateLocked()
	if old != StateNotStarted {
		n := s.rejectLocked(log.OpStart, old, "already started")
		s.mu.Unlock()
		return s.deliver(n)
	}

	now := s.clock.Now()
	s.state = StateRunning
	s.startedAt = now
	s.lastStartAt = now
	s.hasStart = true
	s.resumedAt = time.Time{}

	n := s.transitionLocked(log.OpStart, old, now, &log.TransitionEvent{})
	s.mu.Unlock()

	return s.deliver(n)
}

// Suspend pauses the stopwatch, folding the open interval into the total.
// Returns an ErrInvalidState error if not started or already suspended.
func (s *Stopwatch) Suspend() error {
	s.mu.Lock()

	old := s.stateLocked()
	switch old {
	case StateNotStarted:
		n := s.rejectLocked(log.OpSuspend, old, "not started")
		s.mu.Unlock()
		return s.deliver(n)
	case StateSuspended:
		n := s.rejectLocked(log.OpSuspend, old, "already suspended")
		s.mu.Unlock()
		return s.deliver(n)
	}

	now := s.clock.Now()
	s.state = StateSuspended
	s.suspendedAt = now
	s.totalDuration += interval(s.startedAt, now)

	n := s.transitionLocked(log.OpSuspend, old, now, &log.TransitionEvent{
		Elapsed: log.DurationPtr(s.totalDuration),
	})
	s.mu.Unlock()

	return s.deliver(n)
}

// Resume continues a suspended stopwatch. The next interval is measured
// from the resume instant.
// Returns an ErrInvalidState error if not suspended.
func (s *Stopwatch) Resume() error {
	s.mu.Lock()

	old := s.stateLocked()
	if old != StateSuspended {
		n := s.rejectLocked(log.OpResume, old, "not suspended")
		s.mu.Unlock()
		return s.deliver(n)
	}

	now := s.clock.Now()
	suspended := interval(s.suspendedAt, now)
	s.state = StateRunning
	s.resumedAt = now
	s.startedAt = now
	s.suspendedAt = time.Time{}

	n := s.transitionLocked(log.OpResume, old, now, &log.TransitionEvent{
		Elapsed:   log.DurationPtr(s.totalDuration),
		Suspended: log.DurationPtr(suspended),
	})
	s.mu.Unlock()

	return s.deliver(n)
}

// Stop ends the run and returns the accumulated duration.
// A running stopwatch adds the open interval; a suspended one has already
// folded its last interval. The total stays queryable through Duration and
// the stopwatch can be started again right away.
// Returns an ErrInvalidState error if not started.
func (s *Stopwatch) Stop() (time.Duration, error) {
	s.mu.Lock()

	old := s.stateLocked()
	if old == StateNotStarted {
		n := s.rejectLocked(log.OpStop, old, "not started")
		s.mu.Unlock()
		return 0, s.deliver(n)
	}

	now := s.clock.Now()
	if old == StateRunning {
		s.totalDuration += interval(s.startedAt, now)
	}
	s.state = StateNotStarted
	s.startedAt = time.Time{}
	s.suspendedAt = time.Time{}
	s.resumedAt = time.Time{}
	total := s.totalDuration

	n := s.transitionLocked(log.OpStop, old, now, &log.TransitionEvent{
		Elapsed: log.DurationPtr(total),
	})
	s.mu.Unlock()

	return total, s.deliver(n)
}

// Reset zeroes the accumulated duration and clears every timestamp.
// It is legal in any state and idempotent.
func (s *Stopwatch) Reset() {
	s.mu.Lock()

	old := s.stateLocked()
	now := s.clock.Now()
	s.state = StateNotStarted
	s.totalDuration = 0
	s.startedAt = time.Time{}
	s.lastStartAt = time.Time{}
	s.hasStart = false
	s.suspendedAt = time.Time{}
	s.resumedAt = time.Time{}

	n := s.transitionLocked(log.OpReset, old, now, &log.TransitionEvent{
		Elapsed: log.DurationPtr(0),
	})
	s.mu.Unlock()

	_ = s.deliver(n)
}

// Duration returns the accumulated duration as of now.
// While running the open interval is included; while suspended the total
// is frozen; when not started it is the total kept by the last Stop (zero
// for a fresh or reset stopwatch).
func (s *Stopwatch) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stateLocked() == StateRunning {
		return s.totalDuration + interval(s.startedAt, s.clock.Now())
	}
	return s.totalDuration
}

// StartTime returns the instant of the most recent Start.
// Returns an ErrInvalidState error if never started since creation or reset.
func (s *Stopwatch) StartTime() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasStart {
		return time.Time{}, timeerr.InvalidState("start time", "not started")
	}
	return s.lastStartAt, nil
}

// String returns a compact description of the stopwatch.
func (s *Stopwatch) String() string {
	start := "-"
	if t, err := s.StartTime(); err == nil {
		start = t.Format(time.Stamp)
	}
	return fmt.Sprintf("[state: %s started: %s elapsed: %s]", s.State(), start, s.Duration())
}

// stateLocked returns the current state. Caller must hold s.mu.
func (s *Stopwatch) stateLocked() State {
	return s.state
}

// interval returns to - from, never negative.
func interval(from, to time.Time) time.Duration {
	if d := to.Sub(from); d > 0 {
		return d
	}
	return 0
}

// notice is the outcome of an operation, delivered after s.mu is released.
type notice struct {
	event    log.Event
	err      error
	oldState State
	newState State
	logger   log.Logger
	callback func(oldState, newState State)
}

// transitionLocked builds the notice for a completed operation. tr carries
// the operation specific fields. Caller must hold s.mu.
func (s *Stopwatch) transitionLocked(op log.Operation, old State, at time.Time, tr *log.TransitionEvent) notice {
	newState := s.stateLocked()
	tr.Op = op
	tr.OldState = old.String()
	tr.NewState = newState.String()

	return notice{
		event: log.Event{
			Timestamp:  at,
			InstanceID: s.id,
			Component:  log.ComponentStopwatch,
			Category:   log.CategoryState,
			Transition: tr,
		},
		oldState: old,
		newState: newState,
		logger:   s.logger,
		callback: s.onStateChange,
	}
}

// rejectLocked builds the notice for an illegal operation. Caller must hold s.mu.
func (s *Stopwatch) rejectLocked(op log.Operation, state State, msg string) notice {
	err := timeerr.InvalidState(strings.ToLower(op.String()), msg)
	return notice{
		event: log.Event{
			Timestamp:  s.clock.Now(),
			InstanceID: s.id,
			Component:  log.ComponentStopwatch,
			Category:   log.CategoryError,
			Error: &log.ErrorEventData{
				Op:      op,
				Kind:    timeerr.ErrInvalidState.Error(),
				Message: msg,
				State:   state.String(),
			},
		},
		err:      err,
		oldState: state,
		newState: state,
		logger:   s.logger,
	}
}

// deliver emits the notice's event and state change callback and returns
// its error.
func (s *Stopwatch) deliver(n notice) error {
	n.logger.Log(n.event)
	if n.callback != nil && n.oldState != n.newState {
		n.callback(n.oldState, n.newState)
	}
	return n.err
}
