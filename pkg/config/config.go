// Package config loads the lapwatch YAML configuration file.
//
// Example:
//
//	log_level: debug
//	event_log: /var/log/lapwatch/session.tlog
//	status_output: stdout
//	metrics:
//	  enabled: true
//	  namespace: lapwatch
//	  listen: ":9464"
//	countdown:
//	  default: 1m30s
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Status output destinations.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputNone   = "none"
)

// Config is the CLI configuration.
type Config struct {
	// LogLevel is the slog level: debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// EventLog is the path of a CBOR event log file. Empty disables it.
	EventLog string `yaml:"event_log"`

	// StatusOutput selects where status lines are printed.
	StatusOutput string `yaml:"status_output"`

	Metrics   Metrics   `yaml:"metrics"`
	Countdown Countdown `yaml:"countdown"`
}

// Metrics configures the Prometheus collector.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`

	// Listen is the address serving /metrics. Empty keeps metrics in-process.
	Listen string `yaml:"listen"`
}

// Countdown configures the countdown timer.
type Countdown struct {
	// Default is the length the countdown is set to at startup.
	Default Duration `yaml:"default"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "1h5m").
type Duration struct {
	time.Duration

	line int
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	d.line = value.Line
	if value.Kind != yaml.ScalarNode {
		return &LoadError{Line: value.Line, Message: "duration must be a scalar"}
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return &LoadError{Line: value.Line, Message: fmt.Sprintf("invalid duration %q", value.Value), Cause: err}
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:     "info",
		StatusOutput: OutputStdout,
		Metrics: Metrics{
			Namespace: "lapwatch",
		},
	}
}

// Parse parses YAML data on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if le, ok := err.(*LoadError); ok {
			return nil, le
		}
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{
			File:    path,
			Message: err.Error(),
		}
	}
	return cfg, nil
}

var metricNamespace = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return &LoadError{Message: err.Error()}
	}

	switch c.StatusOutput {
	case OutputStdout, OutputStderr, OutputNone:
	default:
		return &LoadError{Message: fmt.Sprintf("unknown status_output %q", c.StatusOutput)}
	}

	if c.Metrics.Enabled && !metricNamespace.MatchString(c.Metrics.Namespace) {
		return &LoadError{Message: fmt.Sprintf("invalid metrics namespace %q", c.Metrics.Namespace)}
	}
	if c.Metrics.Listen != "" && !c.Metrics.Enabled {
		return &LoadError{Message: "metrics.listen requires metrics.enabled"}
	}

	if c.Countdown.Default.Duration < 0 {
		return &LoadError{Line: c.Countdown.Default.line, Message: "countdown.default must not be negative"}
	}
	return nil
}

// SlogLevel returns the configured level. Validate must have succeeded.
func (c *Config) SlogLevel() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LoadError represents an error loading a configuration file.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
