package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// StatusPrinter writes one human-readable line per event, e.g.
//
//	starting at 2026-10-15T10:00:00Z
//	suspended at 2026-10-15T10:00:00.1Z. current duration is 100ms
//
// The lines are informational only; nothing parses them.
type StatusPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStatusPrinter creates a StatusPrinter writing to w.
func NewStatusPrinter(w io.Writer) *StatusPrinter {
	return &StatusPrinter{w: w}
}

// Log writes the status line for event.
func (p *StatusPrinter) Log(event Event) {
	line := FormatStatus(event)
	if line == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, line)
}

// FormatStatus renders event as a single status line without trailing newline.
func FormatStatus(event Event) string {
	at := event.Timestamp.Format(time.RFC3339Nano)

	if e := event.Error; e != nil {
		return fmt.Sprintf("%s %s rejected: %s", lower(event.Component), lower(e.Op), e.Message)
	}

	tr := event.Transition
	if tr == nil {
		return ""
	}

	switch tr.Op {
	case OpStart:
		if event.Component == ComponentCountdown {
			return fmt.Sprintf("countdown started at %s for %s", at, durationOrZero(tr.Configured))
		}
		return fmt.Sprintf("starting at %s", at)
	case OpSuspend:
		return fmt.Sprintf("suspended at %s. current duration is %s", at, durationOrZero(tr.Elapsed))
	case OpResume:
		return fmt.Sprintf("during %s from suspended. now resuming at %s", durationOrZero(tr.Suspended), at)
	case OpStop:
		return fmt.Sprintf("stopped at %s. total duration is %s", at, durationOrZero(tr.Elapsed))
	case OpReset:
		return fmt.Sprintf("%s reset at %s", lower(event.Component), at)
	case OpSet:
		return fmt.Sprintf("countdown set to %s", durationOrZero(tr.Configured))
	case OpExpire:
		return fmt.Sprintf("countdown expired at %s", at)
	case OpCancel:
		return fmt.Sprintf("countdown cancelled at %s. %s remaining", at, durationOrZero(tr.Remaining))
	default:
		return fmt.Sprintf("%s %s at %s", lower(event.Component), lower(tr.Op), at)
	}
}

func durationOrZero(d *time.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return *d
}

func lower(s fmt.Stringer) string {
	return strings.ToLower(s.String())
}

var _ Logger = (*StatusPrinter)(nil)
