package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func decodeSlogEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsTransition(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(slogger).Log(Event{
		Timestamp:  time.Now(),
		InstanceID: "sw-123",
		Component:  ComponentStopwatch,
		Category:   CategoryState,
		Transition: &TransitionEvent{
			Op:       OpSuspend,
			OldState: "RUNNING",
			NewState: "SUSPENDED",
			Elapsed:  DurationPtr(100 * time.Millisecond),
		},
	})

	entry := decodeSlogEntry(t, &buf)
	checks := map[string]any{
		"level":       "DEBUG",
		"msg":         "timer",
		"instance_id": "sw-123",
		"component":   "STOPWATCH",
		"category":    "STATE",
		"op":          "SUSPEND",
		"old_state":   "RUNNING",
		"new_state":   "SUSPENDED",
		"elapsed":     float64(100 * time.Millisecond),
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s: got %v, want %v", k, entry[k], want)
		}
	}
	if _, ok := entry["remaining"]; ok {
		t.Error("remaining should be omitted when unset")
	}
}

func TestSlogAdapterLogsErrorAtWarn(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(slogger).Log(Event{
		InstanceID: "cd-1",
		Component:  ComponentCountdown,
		Category:   CategoryError,
		Error:      &ErrorEventData{Op: OpSet, Kind: "invalid argument", Message: "couldn't set negative value"},
	})

	entry := decodeSlogEntry(t, &buf)
	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
	if entry["error_kind"] != "invalid argument" {
		t.Errorf("error_kind: got %v", entry["error_kind"])
	}
	if entry["op"] != "SET" {
		t.Errorf("op: got %v, want SET", entry["op"])
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewSlogAdapter(slogger).Log(Event{Transition: &TransitionEvent{Op: OpStart}})

	if buf.Len() != 0 {
		t.Errorf("transition events are debug level, got output at info: %s", buf.String())
	}
}
