package main

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapwatch/lapwatch-go/pkg/config"
	"github.com/lapwatch/lapwatch-go/pkg/log"
	"github.com/lapwatch/lapwatch-go/pkg/metrics"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(flags{})
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lapwatch.yaml")
	data := "log_level: warn\nstatus_output: none\ncountdown:\n  default: 10s\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := loadConfig(flags{
		configFile:    path,
		logLevel:      "debug",
		metrics:       true,
		metricsListen: ":0",
		countdown:     30 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.OutputNone, cfg.StatusOutput, "file value kept without flag")
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":0", cfg.Metrics.Listen)
	assert.Equal(t, 30*time.Second, cfg.Countdown.Default.Duration)
}

func TestLoadConfigInvalidOverride(t *testing.T) {
	_, err := loadConfig(flags{statusOutput: "speaker"})
	assert.Error(t, err)

	_, err = loadConfig(flags{countdown: -time.Second})
	assert.Error(t, err)

	_, err = loadConfig(flags{configFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestMetricsServer(t *testing.T) {
	c := metrics.New(metrics.Options{})
	c.Log(log.Event{
		Component: log.ComponentCountdown,
		Category:  log.CategoryState,
		Transition: &log.TransitionEvent{
			Op:       log.OpExpire,
			OldState: "RUNNING",
			NewState: "EXPIRED",
		},
	})

	srv := httptest.NewServer(newMetricsServer(":0", c).Handler)
	defer srv.Close()

	rsp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer rsp.Body.Close()
	body, err := io.ReadAll(rsp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `lapwatch_countdown_runs_total{outcome="expired"} 1`)
}
