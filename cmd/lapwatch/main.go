// Command lapwatch is an interactive stopwatch and countdown timer.
//
// Every state change is printed as a status line, and can additionally be
// recorded to a CBOR event log (see lapwatch-log) and exported as
// Prometheus metrics.
//
// Usage:
//
//	lapwatch [flags]
//
// Flags:
//
//	-config string          Configuration file path
//	-log-level string       Log level: debug, info, warn, error
//	-event-log string       Record status events to this .tlog file
//	-status-output string   Status lines destination: stdout, stderr, none
//	-metrics                Enable Prometheus metrics
//	-metrics-listen string  Serve /metrics on this address
//	-countdown duration     Initial countdown length (e.g. 90s)
//
// Examples:
//
//	# Plain interactive session
//	lapwatch
//
//	# Record events and expose metrics
//	lapwatch -event-log session.tlog -metrics -metrics-listen :9464
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lapwatch/lapwatch-go/cmd/lapwatch/interactive"
	"github.com/lapwatch/lapwatch-go/pkg/config"
	"github.com/lapwatch/lapwatch-go/pkg/log"
	"github.com/lapwatch/lapwatch-go/pkg/metrics"
)

// flags holds command-line values. Empty or unset values keep the
// configuration file's setting.
type flags struct {
	configFile    string
	logLevel      string
	eventLog      string
	statusOutput  string
	metrics       bool
	metricsListen string
	countdown     time.Duration
}

func main() {
	var f flags
	flag.StringVar(&f.configFile, "config", "", "Configuration file path")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&f.eventLog, "event-log", "", "Record status events to this .tlog file")
	flag.StringVar(&f.statusOutput, "status-output", "", "Status lines destination: stdout, stderr, none")
	flag.BoolVar(&f.metrics, "metrics", false, "Enable Prometheus metrics")
	flag.StringVar(&f.metricsListen, "metrics-listen", "", "Serve /metrics on this address")
	flag.DurationVar(&f.countdown, "countdown", 0, "Initial countdown length (e.g. 90s)")
	flag.Parse()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.eventLog != "" {
		cfg.EventLog = f.eventLog
	}
	if f.statusOutput != "" {
		cfg.StatusOutput = f.statusOutput
	}
	if f.metrics {
		cfg.Metrics.Enabled = true
	}
	if f.metricsListen != "" {
		cfg.Metrics.Listen = f.metricsListen
	}
	if f.countdown != 0 {
		cfg.Countdown.Default.Duration = f.countdown
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Status events always reach slog at debug level.
	loggers := []log.Logger{log.NewSlogAdapter(logger)}

	if cfg.EventLog != "" {
		fl, err := log.NewFileLogger(cfg.EventLog)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer func() {
			if err := fl.Close(); err != nil {
				logger.Warn("closing event log", "error", err)
			}
			if n := fl.Dropped(); n > 0 {
				logger.Warn("events dropped from event log", "count", n)
			}
		}()
		loggers = append(loggers, fl)
		logger.Info("recording events", "path", cfg.EventLog)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New(metrics.Options{
			Namespace:            cfg.Metrics.Namespace,
			EnableRuntimeMetrics: cfg.Metrics.Listen != "",
		})
		loggers = append(loggers, collector)
	}

	opts := interactive.Options{
		Loggers:          loggers,
		Quiet:            cfg.StatusOutput != config.OutputStdout,
		CountdownDefault: cfg.Countdown.Default.Duration,
		Logger:           logger,
	}
	if cfg.StatusOutput == config.OutputStderr {
		opts.Loggers = append(opts.Loggers, log.NewStatusPrinter(os.Stderr))
	}

	shell, err := interactive.New(opts)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return shell.Run(ctx, cancel)
	})

	if collector != nil && cfg.Metrics.Listen != "" {
		srv := newMetricsServer(cfg.Metrics.Listen, collector)
		g.Go(func() error {
			logger.Info("serving metrics", "addr", cfg.Metrics.Listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func newMetricsServer(addr string, collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "lapwatch metrics at /metrics\n")
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
