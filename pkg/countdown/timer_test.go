package countdown

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lapwatch/lapwatch-go/pkg/clock"
	"github.com/lapwatch/lapwatch-go/pkg/log"
	"github.com/lapwatch/lapwatch-go/pkg/log/mocks"
	"github.com/lapwatch/lapwatch-go/pkg/timeerr"
)

var epoch = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

type runResult struct {
	remaining int64
	err       error
}

// startAsync runs Start on its own goroutine and waits until the one-shot
// timer is armed on the fake clock.
func startAsync(ctx context.Context, t *testing.T, timer *Timer, fc *clock.Fake) <-chan runResult {
	t.Helper()
	out := make(chan runResult, 1)
	go func() {
		remaining, err := timer.Start(ctx)
		out <- runResult{remaining, err}
	}()
	fc.BlockUntil(1)
	return out
}

func waitResult(t *testing.T, ch <-chan runResult) runResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
		return runResult{}
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "IDLE"},
		{StateRunning, "RUNNING"},
		{StateExpired, "EXPIRED"},
		{StateCancelled, "CANCELLED"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.String())
		})
	}
}

func TestDefaultTimerIsZero(t *testing.T) {
	timer := New()
	assert.Equal(t, int64(0), timer.Time(), "default timer has to be set 0 second")
	assert.Equal(t, StateIdle, timer.State())
	assert.NotEmpty(t, timer.ID())
}

func TestSet(t *testing.T) {
	tests := []struct {
		name       string
		h, m, s    int64
		wantMillis int64
	}{
		{"Normal", 23, 59, 59, 86399000},
		{"ExceededSeconds", 23, 59, 60, 86400000},
		{"FiveSeconds", 0, 0, 5, 5000},
		{"Zero", 0, 0, 0, 0},
		{"NegativeComponentPositiveTotal", 1, -30, 0, 1800000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := New()
			require.NoError(t, timer.Set(tt.h, tt.m, tt.s))
			assert.Equal(t, tt.wantMillis, timer.Time())
		})
	}
}

func TestSetNegativeFails(t *testing.T) {
	timer := New()
	require.NoError(t, timer.Set(0, 0, 10))

	err := timer.Set(-1, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, timeerr.ErrInvalidArgument)
	assert.Equal(t, int64(10000), timer.Time(), "rejected set keeps previous value")

	assert.ErrorIs(t, timer.SetDuration(-time.Second), timeerr.ErrInvalidArgument)
}

func TestSetOverflowFails(t *testing.T) {
	timer := New()

	assert.ErrorIs(t, timer.Set(math.MaxInt64, 0, 0), timeerr.ErrInvalidArgument)
	assert.ErrorIs(t, timer.Set(0, 0, math.MinInt64), timeerr.ErrInvalidArgument)
	assert.ErrorIs(t, timer.Set(2_000_000, 2_000_000*60, 0), timeerr.ErrInvalidArgument)
}

func TestSetDurationTruncatesToMillis(t *testing.T) {
	timer := New()
	require.NoError(t, timer.SetDuration(1500*time.Millisecond+999*time.Microsecond))
	assert.Equal(t, int64(1500), timer.Time())
}

func TestStartZeroFails(t *testing.T) {
	timer := New()

	_, err := timer.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, timeerr.ErrInvalidState)
	assert.Contains(t, err.Error(), "set to zero")

	require.NoError(t, timer.Set(0, 0, 0))
	_, err = timer.Start(context.Background())
	assert.ErrorIs(t, err, timeerr.ErrInvalidState)
}

func TestStartEndsNormally(t *testing.T) {
	fc := clock.NewFake(epoch)
	timer := New(WithClock(fc))
	require.NoError(t, timer.Set(0, 0, 5))

	done := startAsync(context.Background(), t, timer, fc)
	assert.Equal(t, StateRunning, timer.State())

	fc.Advance(2 * time.Second)
	assert.Equal(t, int64(3000), timer.Remaining())

	fc.Advance(3 * time.Second)
	r := waitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, int64(0), r.remaining, "returns zero")
	assert.Equal(t, StateExpired, timer.State())
	assert.Equal(t, int64(0), timer.Remaining())
	assert.Equal(t, 0, fc.Pending(), "one-shot timer is torn down")
}

func TestCancelReturnsRemaining(t *testing.T) {
	fc := clock.NewFake(epoch)
	timer := New(WithClock(fc))
	require.NoError(t, timer.Set(0, 0, 3))

	done := startAsync(context.Background(), t, timer, fc)
	fc.Advance(time.Second)
	assert.True(t, timer.Cancel())

	r := waitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, int64(2000), r.remaining)
	assert.Equal(t, StateCancelled, timer.State())
	assert.Equal(t, int64(2000), timer.Remaining())
	assert.Equal(t, 0, fc.Pending(), "cancelled timer is stopped")
	assert.False(t, timer.Cancel(), "nothing left to cancel")
}

func TestContextCancelReturnsRemaining(t *testing.T) {
	fc := clock.NewFake(epoch)
	timer := New(WithClock(fc))
	require.NoError(t, timer.Set(0, 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := startAsync(ctx, t, timer, fc)

	fc.Advance(15 * time.Second)
	cancel()

	r := waitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, int64(45000), r.remaining)
	assert.Equal(t, StateCancelled, timer.State())
}

func TestStartWithDoneContext(t *testing.T) {
	timer := New(WithClock(clock.NewFake(epoch)))
	require.NoError(t, timer.Set(0, 0, 3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	remaining, err := timer.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), remaining, "nothing elapsed before cancellation")
}

func TestCancelWhenIdle(t *testing.T) {
	timer := New()
	assert.False(t, timer.Cancel())
}

func TestStartWhileRunningFails(t *testing.T) {
	fc := clock.NewFake(epoch)
	timer := New(WithClock(fc))
	require.NoError(t, timer.Set(0, 0, 5))

	done := startAsync(context.Background(), t, timer, fc)

	_, err := timer.Start(context.Background())
	assert.ErrorIs(t, err, timeerr.ErrInvalidState)
	assert.Contains(t, err.Error(), "already running")

	assert.ErrorIs(t, timer.Set(0, 0, 1), timeerr.ErrInvalidState, "cannot reconfigure while running")

	timer.Cancel()
	waitResult(t, done)
}

func TestRestartAfterRun(t *testing.T) {
	fc := clock.NewFake(epoch)
	timer := New(WithClock(fc))
	require.NoError(t, timer.Set(0, 0, 1))

	for i := 0; i < 3; i++ {
		done := startAsync(context.Background(), t, timer, fc)
		fc.Advance(time.Second)
		r := waitResult(t, done)
		require.NoError(t, r.err)
		assert.Equal(t, int64(0), r.remaining)
	}
}

func TestSetAfterRunReturnsToIdle(t *testing.T) {
	fc := clock.NewFake(epoch)
	timer := New(WithClock(fc))
	require.NoError(t, timer.Set(0, 0, 1))

	done := startAsync(context.Background(), t, timer, fc)
	fc.Advance(time.Second)
	waitResult(t, done)
	require.Equal(t, StateExpired, timer.State())

	require.NoError(t, timer.Set(0, 0, 4))
	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, int64(4000), timer.Remaining())
}

func TestStatusEvents(t *testing.T) {
	fc := clock.NewFake(epoch)
	logger := mocks.NewMockLogger(t)
	timer := New(WithClock(fc), WithLogger(logger), WithID("cd-events"))

	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Transition != nil && e.Transition.Op == log.OpSet &&
			e.InstanceID == "cd-events" && e.Component == log.ComponentCountdown &&
			*e.Transition.Configured == 2*time.Second
	})).Return().Once()
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Transition != nil && e.Transition.Op == log.OpStart &&
			e.Transition.NewState == "RUNNING"
	})).Return().Once()
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Transition != nil && e.Transition.Op == log.OpExpire &&
			e.Transition.OldState == "RUNNING" && e.Transition.NewState == "EXPIRED" &&
			*e.Transition.Remaining == 0 && e.Timestamp.Equal(epoch.Add(2*time.Second))
	})).Return().Once()
	logger.EXPECT().Log(mock.MatchedBy(func(e log.Event) bool {
		return e.Category == log.CategoryError && e.Error != nil &&
			e.Error.Op == log.OpSet && e.Error.Kind == "invalid argument"
	})).Return().Once()

	require.NoError(t, timer.Set(0, 0, 2))
	done := startAsync(context.Background(), t, timer, fc)
	fc.Advance(2 * time.Second)
	waitResult(t, done)
	assert.Error(t, timer.Set(0, 0, -1))
}

func TestRealTimeCountdown(t *testing.T) {
	if testing.Short() {
		t.Skip("waits five seconds of real time")
	}

	timer := New()
	require.NoError(t, timer.Set(0, 0, 5))
	assert.Equal(t, int64(5000), timer.Time())

	begin := time.Now()
	remaining, err := timer.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)
	assert.GreaterOrEqual(t, time.Since(begin), 5*time.Second)
}

func TestRealTimeCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("waits one second of real time")
	}

	timer := New()
	require.NoError(t, timer.Set(0, 0, 3))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	begin := time.Now()
	remaining, err := timer.Start(ctx)
	require.NoError(t, err)
	assert.Greater(t, remaining, int64(0))
	assert.Less(t, remaining, int64(3000))
	assert.Less(t, time.Since(begin), 2*time.Second, "cancellation is observed promptly")
}
