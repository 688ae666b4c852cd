// Package commands implements the lapwatch-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lapwatch/lapwatch-go/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [id] COMPONENT OP [rejected]
	ts := event.Timestamp.UTC().Format(timestampLayout)
	id := shortenID(event.InstanceID)

	op := "UNKNOWN"
	if o, ok := event.Operation(); ok {
		op = o.String()
	}

	suffix := ""
	if event.Error != nil {
		suffix = " rejected"
	}

	fmt.Fprintf(w, "%s [%s] %s %s%s\n", ts, id, event.Component, op, suffix)

	switch {
	case event.Transition != nil:
		formatTransitionDetails(w, event.Transition)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of the instance ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatTransitionDetails(w io.Writer, tr *log.TransitionEvent) {
	if tr.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", tr.OldState, tr.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", tr.NewState)
	}
	if tr.Elapsed != nil {
		fmt.Fprintf(w, "  Elapsed: %s\n", formatDuration(*tr.Elapsed))
	}
	if tr.Suspended != nil {
		fmt.Fprintf(w, "  Suspended: %s\n", formatDuration(*tr.Suspended))
	}
	if tr.Configured != nil {
		fmt.Fprintf(w, "  Configured: %s\n", formatDuration(*tr.Configured))
	}
	if tr.Remaining != nil {
		fmt.Fprintf(w, "  Remaining: %s\n", formatDuration(*tr.Remaining))
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	fmt.Fprintf(w, "  Kind: %s\n", e.Kind)
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
	if e.State != "" {
		fmt.Fprintf(w, "  State: %s\n", e.State)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseComponentFlag parses a component string from command-line flag (case-insensitive).
func ParseComponentFlag(s string) (log.Component, error) {
	switch strings.ToLower(s) {
	case "stopwatch", "sw":
		return log.ComponentStopwatch, nil
	case "countdown", "cd":
		return log.ComponentCountdown, nil
	default:
		return 0, fmt.Errorf("invalid component: %s (must be stopwatch or countdown)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be state or error)", s)
	}
}

var operations = []log.Operation{
	log.OpStart, log.OpSuspend, log.OpResume, log.OpStop,
	log.OpReset, log.OpSet, log.OpExpire, log.OpCancel,
}

// ParseOperationFlag parses an operation string from command-line flag (case-insensitive).
func ParseOperationFlag(s string) (log.Operation, error) {
	for _, op := range operations {
		if strings.EqualFold(s, op.String()) {
			return op, nil
		}
	}
	return 0, fmt.Errorf("invalid operation: %s (must be start, suspend, resume, stop, reset, set, expire or cancel)", s)
}

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Component *log.Component
	Category  *log.Category
	Operation *log.Operation
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Component: f.Component,
		Category:  f.Category,
		Operation: f.Operation,
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
