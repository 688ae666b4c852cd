package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lapwatch/lapwatch-go/pkg/log"
)

func TestFormatTransition(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sessionEvents()[2])

	want := "2026-10-15T10:00:02.100000Z [0f4c2a9e] STOPWATCH RESUME\n" +
		"  SUSPENDED -> RUNNING\n" +
		"  Elapsed: 100.000ms\n" +
		"  Suspended: 2.000s\n" +
		"\n"
	if got := buf.String(); got != want {
		t.Errorf("formatEvent:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatError(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sessionEvents()[3])

	output := buf.String()
	for _, want := range []string{
		"STOPWATCH RESUME rejected",
		"  Kind: invalid state",
		"  Message: not suspended",
		"  State: RUNNING",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestFormatCountdown(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sessionEvents()[7])

	output := buf.String()
	if !strings.Contains(output, "[7b1d3e55] COUNTDOWN CANCEL") {
		t.Errorf("unexpected header:\n%s", output)
	}
	if !strings.Contains(output, "  Configured: 3.000s\n") {
		t.Errorf("expected configured duration:\n%s", output)
	}
	if !strings.Contains(output, "  Remaining: 2.000s\n") {
		t.Errorf("expected remaining duration:\n%s", output)
	}
}

func TestShortenID(t *testing.T) {
	if got := shortenID("abc"); got != "abc" {
		t.Errorf("shortenID(abc) = %q", got)
	}
	if got := shortenID("0123456789"); got != "01234567" {
		t.Errorf("shortenID = %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.000ms"},
		{1500 * time.Microsecond, "1.500ms"},
		{2 * time.Second, "2.000s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRunViewAll(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	if got := strings.Count(buf.String(), "2026-10-15T"); got != len(sessionEvents()) {
		t.Errorf("expected %d events, got %d", len(sessionEvents()), got)
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	component := log.ComponentCountdown
	op := log.OpStart
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Component: &component, Operation: &op}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if got := strings.Count(output, "COUNTDOWN START"); got != 2 {
		t.Errorf("expected 2 countdown starts, got %d:\n%s", got, output)
	}
	if strings.Contains(output, "STOPWATCH") {
		t.Error("stopwatch events should be filtered out")
	}
}

func TestRunViewErrorsOnly(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())

	category := log.CategoryError
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Category: &category}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	if got := strings.Count(buf.String(), "rejected"); got != 1 {
		t.Errorf("expected 1 rejected event, got %d", got)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := RunView(filepath.Join(t.TempDir(), "missing.tlog"), ViewFilter{}, &buf)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
