package countdown

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lapwatch/lapwatch-go/pkg/clock"
	"github.com/lapwatch/lapwatch-go/pkg/log"
	"github.com/lapwatch/lapwatch-go/pkg/timeerr"
)

// MaxDuration is the longest countdown that can be configured.
const MaxDuration = time.Duration(math.MaxInt64)

// State represents the countdown state.
type State uint8

const (
	// StateIdle indicates no run has happened since the last Set.
	StateIdle State = iota

	// StateRunning indicates a Start call is blocked waiting.
	StateRunning

	// StateExpired indicates the last run completed normally.
	StateExpired

	// StateCancelled indicates the last run was cancelled before expiry.
	StateCancelled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateExpired:
		return "EXPIRED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock sets the time source. Defaults to clock.Real().
func WithClock(c clock.Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithLogger sets the status event logger. Defaults to log.NoopLogger.
func WithLogger(l log.Logger) Option {
	return func(t *Timer) { t.logger = log.OrNoop(l) }
}

// WithID sets the instance ID used in status events. Defaults to a random UUID.
func WithID(id string) Option {
	return func(t *Timer) { t.id = id }
}

// Timer is a one-shot countdown.
type Timer struct {
	mu sync.Mutex

	id     string
	clock  clock.Clock
	logger log.Logger

	// Configured countdown length
	total time.Duration

	// When the current (or last) run started
	startTime time.Time

	state State

	// Remaining time recorded when the last run ended
	remaining time.Duration

	// Cancels the in-flight run; nil when not running
	cancel context.CancelFunc
}

// New creates a countdown timer set to zero.
func New(opts ...Option) *Timer {
	t := &Timer{
		id:     uuid.NewString(),
		clock:  clock.Real(),
		logger: log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ID returns the instance ID.
func (t *Timer) ID() string {
	return t.id
}

// State returns the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Set configures the countdown from hours, minutes and seconds. Components
// may exceed their unit (0h 0m 90s is 90 seconds) and may be negative as
// long as the total is not.
// Returns an ErrInvalidArgument error if the total is negative or does not
// fit in a time.Duration, and an ErrInvalidState error while running.
func (t *Timer) Set(hours, minutes, seconds int64) error {
	ms, ok := toMillis(hours, minutes, seconds)
	if !ok {
		return t.reject(log.OpSet, timeerr.ErrInvalidArgument, "duration out of range")
	}
	if ms < 0 {
		return t.reject(log.OpSet, timeerr.ErrInvalidArgument, "couldn't set negative value")
	}
	return t.SetDuration(time.Duration(ms) * time.Millisecond)
}

// SetDuration configures the countdown length directly. Sub-millisecond
// precision is truncated.
func (t *Timer) SetDuration(d time.Duration) error {
	if d < 0 {
		return t.reject(log.OpSet, timeerr.ErrInvalidArgument, "couldn't set negative value")
	}
	d = d.Truncate(time.Millisecond)

	t.mu.Lock()
	if t.state == StateRunning {
		t.mu.Unlock()
		return t.reject(log.OpSet, timeerr.ErrInvalidState, "already running")
	}
	old := t.state
	t.total = d
	t.state = StateIdle
	t.remaining = d
	ev := t.transitionLocked(log.OpSet, old, t.clock.Now(), &log.TransitionEvent{
		Configured: log.DurationPtr(d),
	})
	t.mu.Unlock()

	t.logger.Log(ev)
	return nil
}

// Time returns the configured countdown length in milliseconds.
func (t *Timer) Time() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total.Milliseconds()
}

// Start runs the countdown and blocks until it expires or is cancelled.
// It returns the remaining milliseconds: 0 on expiry, otherwise the time
// left when ctx was done or Cancel was called.
// Returns an ErrInvalidState error if the timer is set to zero or a run is
// already in flight.
func (t *Timer) Start(ctx context.Context) (int64, error) {
	t.mu.Lock()
	switch {
	case t.state == StateRunning:
		t.mu.Unlock()
		return 0, t.reject(log.OpStart, timeerr.ErrInvalidState, "already running")
	case t.total == 0:
		t.mu.Unlock()
		return 0, t.reject(log.OpStart, timeerr.ErrInvalidState, "timer is set to zero")
	}

	old := t.state
	total := t.total
	startTime := t.clock.Now()
	timer := t.clock.NewTimer(total)
	runCtx, cancel := context.WithCancel(ctx)

	t.startTime = startTime
	t.state = StateRunning
	t.cancel = cancel
	ev := t.transitionLocked(log.OpStart, old, startTime, &log.TransitionEvent{
		Configured: log.DurationPtr(total),
	})
	t.mu.Unlock()

	t.logger.Log(ev)

	result := make(chan time.Duration, 1)
	go t.wait(runCtx, timer, startTime, total, result)
	remaining := <-result
	cancel()

	return remaining.Milliseconds(), nil
}

// wait is the one-shot worker behind Start. It exits after delivering
// exactly one result.
func (t *Timer) wait(ctx context.Context, timer clock.Timer, startTime time.Time, total time.Duration, result chan<- time.Duration) {
	var (
		op        log.Operation
		newState  State
		remaining time.Duration
	)

	select {
	case <-timer.C():
		op, newState = log.OpExpire, StateExpired
	case <-ctx.Done():
		timer.Stop()
		op, newState = log.OpCancel, StateCancelled
	}

	t.mu.Lock()
	now := t.clock.Now()
	if newState == StateCancelled {
		remaining = clampRemaining(total - now.Sub(startTime), total)
	}
	t.state = newState
	t.remaining = remaining
	t.cancel = nil
	ev := t.transitionLocked(op, StateRunning, now, &log.TransitionEvent{
		Configured: log.DurationPtr(total),
		Remaining:  log.DurationPtr(remaining),
	})
	t.mu.Unlock()

	t.logger.Log(ev)
	result <- remaining
}

// Cancel stops the in-flight run, making Start return early.
// Returns false if no run is in flight.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	return true
}

// Remaining returns the remaining milliseconds: live while running, the
// value recorded at the end of the last run otherwise (0 after expiry),
// or the configured length if never started since the last Set.
func (t *Timer) Remaining() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateRunning {
		return clampRemaining(t.total-t.clock.Since(t.startTime), t.total).Milliseconds()
	}
	return t.remaining.Milliseconds()
}

func clampRemaining(d, total time.Duration) time.Duration {
	switch {
	case d < 0:
		return 0
	case d > total:
		return total
	default:
		return d
	}
}

// toMillis converts the components to milliseconds, reporting false on
// overflow of a time.Duration.
func toMillis(hours, minutes, seconds int64) (int64, bool) {
	const maxMillis = int64(MaxDuration / time.Millisecond)

	parts := []struct {
		v, unit int64
	}{
		{hours, 3600 * 1000},
		{minutes, 60 * 1000},
		{seconds, 1000},
	}

	var total int64
	for _, p := range parts {
		if p.v > maxMillis/p.unit || p.v < -maxMillis/p.unit {
			return 0, false
		}
		total += p.v * p.unit
		if total > maxMillis || total < -maxMillis {
			return 0, false
		}
	}
	return total, true
}

// transitionLocked builds a status event. Caller must hold t.mu.
func (t *Timer) transitionLocked(op log.Operation, old State, at time.Time, tr *log.TransitionEvent) log.Event {
	tr.Op = op
	tr.OldState = old.String()
	tr.NewState = t.state.String()
	return log.Event{
		Timestamp:  at,
		InstanceID: t.id,
		Component:  log.ComponentCountdown,
		Category:   log.CategoryState,
		Transition: tr,
	}
}

// reject logs and returns an error of the given kind. Must not be called
// with t.mu held.
func (t *Timer) reject(op log.Operation, kind error, msg string) error {
	t.mu.Lock()
	state := t.state
	now := t.clock.Now()
	t.mu.Unlock()

	err := &timeerr.Error{Kind: kind, Op: strings.ToLower(op.String()), Message: msg}
	t.logger.Log(log.Event{
		Timestamp:  now,
		InstanceID: t.id,
		Component:  log.ComponentCountdown,
		Category:   log.CategoryError,
		Error: &log.ErrorEventData{
			Op:      op,
			Kind:    kind.Error(),
			Message: msg,
			State:   state.String(),
		},
	})
	return err
}
