package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes status events to an slog.Logger.
// Useful for development when you want events alongside operational logs.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at Debug level, or Warn level for errors.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("instance_id", event.InstanceID),
		slog.String("component", event.Component.String()),
		slog.String("category", event.Category.String()),
	}

	level := slog.LevelDebug

	switch {
	case event.Transition != nil:
		tr := event.Transition
		attrs = append(attrs,
			slog.String("op", tr.Op.String()),
			slog.String("new_state", tr.NewState),
		)
		if tr.OldState != "" {
			attrs = append(attrs, slog.String("old_state", tr.OldState))
		}
		if tr.Elapsed != nil {
			attrs = append(attrs, slog.Duration("elapsed", *tr.Elapsed))
		}
		if tr.Suspended != nil {
			attrs = append(attrs, slog.Duration("suspended", *tr.Suspended))
		}
		if tr.Configured != nil {
			attrs = append(attrs, slog.Duration("configured", *tr.Configured))
		}
		if tr.Remaining != nil {
			attrs = append(attrs, slog.Duration("remaining", *tr.Remaining))
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("op", event.Error.Op.String()),
			slog.String("error_kind", event.Error.Kind),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.State != "" {
			attrs = append(attrs, slog.String("state", event.Error.State))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "timer", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
