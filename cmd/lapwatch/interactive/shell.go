// Package interactive provides the interactive command-line interface
// for lapwatch.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/lapwatch/lapwatch-go/pkg/clock"
	"github.com/lapwatch/lapwatch-go/pkg/countdown"
	"github.com/lapwatch/lapwatch-go/pkg/log"
	"github.com/lapwatch/lapwatch-go/pkg/stopwatch"
)

// Options configures a Shell.
type Options struct {
	// Loggers receive every status event in addition to the status printer.
	Loggers []log.Logger

	// Quiet disables the status lines printed after each transition.
	Quiet bool

	// CountdownDefault is the countdown length set at startup.
	CountdownDefault time.Duration

	// Clock overrides the time source of both timers.
	Clock clock.Clock

	// Logger receives operational logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Shell drives one stopwatch and one countdown timer from typed commands.
type Shell struct {
	rl  *readline.Instance
	out io.Writer

	sw     *stopwatch.Stopwatch
	cd     *countdown.Timer
	logger *slog.Logger

	// Background countdown runs
	runs sync.WaitGroup
}

// New creates a shell reading commands through readline.
func New(opts Options) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lapwatch> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s, err := newShell(opts, rl.Stdout())
	if err != nil {
		rl.Close()
		return nil, err
	}
	s.rl = rl
	return s, nil
}

// newShell builds a shell writing to out, without a terminal.
func newShell(opts Options, out io.Writer) (*Shell, error) {
	out = &lockedWriter{w: out}

	loggers := append([]log.Logger(nil), opts.Loggers...)
	if !opts.Quiet {
		loggers = append(loggers, log.NewStatusPrinter(out))
	}
	events := log.NewMultiLogger(loggers...)

	c := opts.Clock
	if c == nil {
		c = clock.Real()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Shell{
		out:    out,
		sw:     stopwatch.New(stopwatch.WithClock(c), stopwatch.WithLogger(events)),
		cd:     countdown.New(countdown.WithClock(c), countdown.WithLogger(events)),
		logger: logger,
	}

	s.sw.OnStateChange(func(oldState, newState stopwatch.State) {
		s.logger.Debug("stopwatch state changed", "from", oldState, "to", newState)
	})

	if opts.CountdownDefault > 0 {
		if err := s.cd.SetDuration(opts.CountdownDefault); err != nil {
			return nil, fmt.Errorf("failed to set default countdown: %w", err)
		}
	}
	return s, nil
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("start"),
	readline.PcItem("suspend"),
	readline.PcItem("resume"),
	readline.PcItem("stop"),
	readline.PcItem("reset"),
	readline.PcItem("duration"),
	readline.PcItem("starttime"),
	readline.PcItem("status"),
	readline.PcItem("set"),
	readline.PcItem("countdown"),
	readline.PcItem("cancel"),
	readline.PcItem("remaining"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

// Stopwatch returns the stopwatch driven by the shell.
func (s *Shell) Stopwatch() *stopwatch.Stopwatch {
	return s.sw
}

// Countdown returns the countdown timer driven by the shell.
func (s *Shell) Countdown() *countdown.Timer {
	return s.cd
}

// Stdout returns a writer that properly coordinates with the readline input.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop. It returns when the user quits,
// input ends or ctx is done; cancel is called in every case.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) error {
	defer s.rl.Close()
	defer cancel()

	// Readline blocks; closing it on shutdown makes it return io.EOF.
	go func() {
		<-ctx.Done()
		s.rl.Close()
	}()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				s.shutdown()
				return fmt.Errorf("read command: %w", err)
			}
			fmt.Fprintln(s.out, "Exiting...")
			s.shutdown()
			return nil
		}

		if quit := s.Exec(ctx, line); quit {
			s.shutdown()
			return nil
		}
	}
}

// Exec runs one command line. It reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "start", "s":
		s.report(s.sw.Start())

	case "suspend", "pause", "p":
		s.report(s.sw.Suspend())

	case "resume", "r":
		s.report(s.sw.Resume())

	case "stop":
		total, err := s.sw.Stop()
		if s.report(err) {
			fmt.Fprintf(s.out, "Total: %s\n", total)
		}

	case "reset":
		s.sw.Reset()

	case "duration", "d":
		fmt.Fprintf(s.out, "Duration: %s\n", s.sw.Duration())

	case "starttime":
		at, err := s.sw.StartTime()
		if s.report(err) {
			fmt.Fprintf(s.out, "Started: %s\n", at.Format(time.RFC3339Nano))
		}

	case "status":
		s.cmdStatus()

	case "set":
		s.cmdSet(args)

	case "countdown", "cd":
		s.cmdCountdown(ctx, args)

	case "cancel":
		if !s.cd.Cancel() {
			fmt.Fprintln(s.out, "No countdown running")
		}

	case "remaining":
		fmt.Fprintf(s.out, "Remaining: %dms\n", s.cd.Remaining())

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
lapwatch Commands:
  Stopwatch:
    start              - Start the stopwatch
    suspend            - Suspend (pause) the stopwatch
    resume             - Resume a suspended stopwatch
    stop               - Stop and print the total duration
    reset              - Zero the stopwatch
    duration           - Print the accumulated duration
    starttime          - Print when the stopwatch was started

  Countdown:
    set <h> <m> <s>    - Set the countdown length
    countdown [h m s]  - Run the countdown in the background
    cancel             - Cancel the running countdown
    remaining          - Print the remaining countdown time

  General:
    status             - Show both timers
    help               - Show this help
    quit               - Exit`)
}

func (s *Shell) cmdStatus() {
	fmt.Fprintf(s.out, "Stopwatch: %s\n", s.sw)
	fmt.Fprintf(s.out, "Countdown: [state: %s set: %dms remaining: %dms]\n",
		s.cd.State(), s.cd.Time(), s.cd.Remaining())
}

// cmdSet configures the countdown and reports whether it was accepted.
func (s *Shell) cmdSet(args []string) bool {
	h, m, sec, err := parseHMS(args)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		fmt.Fprintln(s.out, "Usage: set <hours> <minutes> <seconds>")
		return false
	}
	return s.report(s.cd.Set(h, m, sec))
}

func (s *Shell) cmdCountdown(ctx context.Context, args []string) {
	if len(args) > 0 && !s.cmdSet(args) {
		return
	}

	// Reject synchronously so errors print before the prompt returns.
	if s.cd.State() == countdown.StateRunning {
		fmt.Fprintln(s.out, "Error: countdown already running")
		return
	}
	if s.cd.Time() == 0 {
		fmt.Fprintln(s.out, "Error: countdown is set to zero (use 'set <h> <m> <s>')")
		return
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()

		remaining, err := s.cd.Start(ctx)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(s.out, "Countdown finished: %dms remaining\n", remaining)
	}()
}

// report prints err if set and reports whether the command succeeded.
func (s *Shell) report(err error) bool {
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	return true
}

// shutdown cancels a running countdown and waits for it to report.
func (s *Shell) shutdown() {
	s.cd.Cancel()
	s.runs.Wait()
	s.logger.Info("shell stopped", "stopwatch", s.sw.String())
}

func parseHMS(args []string) (h, m, sec int64, err error) {
	if len(args) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 values, got %d", len(args))
	}
	vals := make([]int64, 3)
	for i, a := range args {
		vals[i], err = strconv.ParseInt(a, 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid number %q", a)
		}
	}
	return vals[0], vals[1], vals[2], nil
}

// lockedWriter serializes writes from the command loop, the status
// printer and background countdown runs.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
