// Package log provides structured status event logging for lapwatch.
//
// This package defines the Logger interface and Event type for capturing
// every state transition of a stopwatch or countdown timer. It is separate
// from operational logging (slog) - the event stream is a complete
// machine-readable trace of what the timers did and when.
//
// # Basic Usage
//
// Components accept a Logger through their options:
//
//	// Human-readable status lines on stdout
//	sw := stopwatch.New(stopwatch.WithLogger(log.NewStatusPrinter(os.Stdout)))
//
//	// For development: log to console via slog
//	sw := stopwatch.New(stopwatch.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// Binary event file plus console lines
//	fl, _ := log.NewFileLogger("/var/log/lapwatch/session.tlog")
//	sw := stopwatch.New(stopwatch.WithLogger(log.NewMultiLogger(
//	    log.NewStatusPrinter(os.Stdout),
//	    fl,
//	)))
//
// # Event Types
//
// Events carry either a Transition (a legal operation that changed or
// re-stated the timer's state) or an Error (an operation rejected because
// the timer was in the wrong state or the argument was out of range).
//
// # File Format
//
// Event files use CBOR encoding with the .tlog extension. The lapwatch-log
// CLI tool provides viewing, filtering, and export capabilities.
package log
