package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lapwatch/lapwatch-go/pkg/log"
)

var baseTime = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test"+log.FileExtension)

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("failed to close logger: %v", err)
	}

	return path
}

func stateEvent(at time.Duration, id string, c log.Component, tr log.TransitionEvent) log.Event {
	return log.Event{
		Timestamp:  baseTime.Add(at),
		InstanceID: id,
		Component:  c,
		Category:   log.CategoryState,
		Transition: &tr,
	}
}

// sessionEvents is a short session: a stopwatch run with one suspension,
// a rejected resume, and two countdown runs.
func sessionEvents() []log.Event {
	const sw = "0f4c2a9e-stopwatch"
	const cd = "7b1d3e55-countdown"
	return []log.Event{
		stateEvent(0, sw, log.ComponentStopwatch, log.TransitionEvent{
			Op: log.OpStart, OldState: "NOT_STARTED", NewState: "RUNNING",
		}),
		stateEvent(100*time.Millisecond, sw, log.ComponentStopwatch, log.TransitionEvent{
			Op: log.OpSuspend, OldState: "RUNNING", NewState: "SUSPENDED",
			Elapsed: log.DurationPtr(100 * time.Millisecond),
		}),
		stateEvent(2100*time.Millisecond, sw, log.ComponentStopwatch, log.TransitionEvent{
			Op: log.OpResume, OldState: "SUSPENDED", NewState: "RUNNING",
			Elapsed:   log.DurationPtr(100 * time.Millisecond),
			Suspended: log.DurationPtr(2 * time.Second),
		}),
		{
			Timestamp:  baseTime.Add(2200 * time.Millisecond),
			InstanceID: sw,
			Component:  log.ComponentStopwatch,
			Category:   log.CategoryError,
			Error: &log.ErrorEventData{
				Op: log.OpResume, Kind: "invalid state", Message: "not suspended", State: "RUNNING",
			},
		},
		stateEvent(2200*time.Millisecond, sw, log.ComponentStopwatch, log.TransitionEvent{
			Op: log.OpStop, OldState: "RUNNING", NewState: "NOT_STARTED",
			Elapsed: log.DurationPtr(200 * time.Millisecond),
		}),
		stateEvent(3*time.Second, cd, log.ComponentCountdown, log.TransitionEvent{
			Op: log.OpSet, OldState: "IDLE", NewState: "IDLE",
			Configured: log.DurationPtr(3 * time.Second),
		}),
		stateEvent(3*time.Second, cd, log.ComponentCountdown, log.TransitionEvent{
			Op: log.OpStart, OldState: "IDLE", NewState: "RUNNING",
			Configured: log.DurationPtr(3 * time.Second),
		}),
		stateEvent(4*time.Second, cd, log.ComponentCountdown, log.TransitionEvent{
			Op: log.OpCancel, OldState: "RUNNING", NewState: "CANCELLED",
			Configured: log.DurationPtr(3 * time.Second),
			Remaining:  log.DurationPtr(2 * time.Second),
		}),
		stateEvent(5*time.Second, cd, log.ComponentCountdown, log.TransitionEvent{
			Op: log.OpStart, OldState: "CANCELLED", NewState: "RUNNING",
			Configured: log.DurationPtr(3 * time.Second),
		}),
		stateEvent(8*time.Second, cd, log.ComponentCountdown, log.TransitionEvent{
			Op: log.OpExpire, OldState: "RUNNING", NewState: "EXPIRED",
			Configured: log.DurationPtr(3 * time.Second),
			Remaining:  log.DurationPtr(0),
		}),
	}
}

func TestParseFlags(t *testing.T) {
	if c, err := ParseComponentFlag("SW"); err != nil || c != log.ComponentStopwatch {
		t.Errorf("ParseComponentFlag(SW) = %v, %v", c, err)
	}
	if c, err := ParseComponentFlag("countdown"); err != nil || c != log.ComponentCountdown {
		t.Errorf("ParseComponentFlag(countdown) = %v, %v", c, err)
	}
	if _, err := ParseComponentFlag("egg-timer"); err == nil {
		t.Error("expected error for unknown component")
	}

	if c, err := ParseCategoryFlag("Error"); err != nil || c != log.CategoryError {
		t.Errorf("ParseCategoryFlag(Error) = %v, %v", c, err)
	}
	if _, err := ParseCategoryFlag("message"); err == nil {
		t.Error("expected error for unknown category")
	}

	for _, op := range operations {
		got, err := ParseOperationFlag(op.String())
		if err != nil || got != op {
			t.Errorf("ParseOperationFlag(%s) = %v, %v", op, got, err)
		}
	}
	if op, err := ParseOperationFlag("suspend"); err != nil || op != log.OpSuspend {
		t.Errorf("ParseOperationFlag(suspend) = %v, %v", op, err)
	}
	if _, err := ParseOperationFlag("lap"); err == nil {
		t.Error("expected error for unknown operation")
	}
}
