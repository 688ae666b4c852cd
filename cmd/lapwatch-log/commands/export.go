package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/lapwatch/lapwatch-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

// jsonEvent is the JSONL shape of an event. Enums are written by name and
// durations in milliseconds.
type jsonEvent struct {
	Timestamp  time.Time  `json:"timestamp"`
	InstanceID string     `json:"instance_id"`
	Component  string     `json:"component"`
	Category   string     `json:"category"`
	Op         string     `json:"op,omitempty"`
	OldState   string     `json:"old_state,omitempty"`
	NewState   string     `json:"new_state,omitempty"`
	ElapsedMs  *int64     `json:"elapsed_ms,omitempty"`
	Suspended  *int64     `json:"suspended_ms,omitempty"`
	Configured *int64     `json:"configured_ms,omitempty"`
	Remaining  *int64     `json:"remaining_ms,omitempty"`
	Error      *jsonError `json:"error,omitempty"`
}

type jsonError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	State   string `json:"state,omitempty"`
}

func toJSONEvent(event log.Event) jsonEvent {
	je := jsonEvent{
		Timestamp:  event.Timestamp.UTC(),
		InstanceID: event.InstanceID,
		Component:  event.Component.String(),
		Category:   event.Category.String(),
	}
	if op, ok := event.Operation(); ok {
		je.Op = op.String()
	}
	if tr := event.Transition; tr != nil {
		je.OldState = tr.OldState
		je.NewState = tr.NewState
		je.ElapsedMs = millis(tr.Elapsed)
		je.Suspended = millis(tr.Suspended)
		je.Configured = millis(tr.Configured)
		je.Remaining = millis(tr.Remaining)
	}
	if e := event.Error; e != nil {
		je.Error = &jsonError{Kind: e.Kind, Message: e.Message, State: e.State}
	}
	return je
}

func millis(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "instance_id", "component", "category", "op", "old_state", "new_state", "elapsed_ms", "remaining_ms", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		je := toJSONEvent(event)
		errMsg := ""
		if je.Error != nil {
			errMsg = je.Error.Kind + ": " + je.Error.Message
		}

		row := []string{
			je.Timestamp.Format(timestampLayout),
			je.InstanceID,
			je.Component,
			je.Category,
			je.Op,
			je.OldState,
			je.NewState,
			optionalInt(je.ElapsedMs),
			optionalInt(je.Remaining),
			errMsg,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return cw.Error()
}

func optionalInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
