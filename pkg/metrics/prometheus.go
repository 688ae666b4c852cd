// Package metrics exports timer status events as Prometheus metrics.
//
// A Collector implements log.Logger, so it is wired next to the status
// printer and file logger through a log.MultiLogger:
//
//	c := metrics.New(metrics.Options{})
//	sw := stopwatch.New(stopwatch.WithLogger(log.NewMultiLogger(printer, c)))
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lapwatch/lapwatch-go/pkg/log"
)

const (
	promNamespace          = "lapwatch"
	promStopwatchSubsystem = "stopwatch"
	promCountdownSubsystem = "countdown"
	promTimerSubsystem     = "timer"
)

// DefaultBuckets are the histogram buckets in seconds used for measured
// and configured durations.
var DefaultBuckets = []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600}

// Options configures a Collector.
type Options struct {
	// Namespace prefixes every metric name. Defaults to "lapwatch".
	Namespace string

	// Registry receives the metrics. A new registry is created if nil.
	Registry *prometheus.Registry

	// Buckets overrides DefaultBuckets.
	Buckets []float64

	// EnableRuntimeMetrics adds the Go and process collectors.
	EnableRuntimeMetrics bool
}

// Collector turns status events into Prometheus metrics.
type Collector struct {
	transitionsM      *prometheus.CounterVec
	rejectionsM       *prometheus.CounterVec
	runningM          *prometheus.GaugeVec
	stopwatchTotalM   prometheus.Histogram
	suspendedM        prometheus.Histogram
	countdownRunsM    *prometheus.CounterVec
	countdownConfigM  prometheus.Histogram
	countdownLeftOver prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a Collector and registers its metrics.
func New(opts Options) *Collector {
	namespace := promNamespace
	if opts.Namespace != "" {
		namespace = opts.Namespace
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}

	c := &Collector{
		transitionsM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: promTimerSubsystem,
			Name:      "transitions_total",
			Help:      "The total of state transitions by component and operation.",
		}, []string{"component", "op"}),

		rejectionsM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: promTimerSubsystem,
			Name:      "rejections_total",
			Help:      "The total of rejected operations by component, operation and error kind.",
		}, []string{"component", "op", "kind"}),

		runningM: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: promTimerSubsystem,
			Name:      "running",
			Help:      "Number of timers currently in the running state.",
		}, []string{"component"}),

		stopwatchTotalM: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: promStopwatchSubsystem,
			Name:      "stopped_duration_seconds",
			Help:      "Accumulated duration in seconds reported by stop.",
			Buckets:   buckets,
		}),

		suspendedM: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: promStopwatchSubsystem,
			Name:      "suspended_duration_seconds",
			Help:      "Duration in seconds a stopwatch stayed suspended before resuming.",
			Buckets:   buckets,
		}),

		countdownRunsM: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: promCountdownSubsystem,
			Name:      "runs_total",
			Help:      "The total of finished countdown runs by outcome.",
		}, []string{"outcome"}),

		countdownConfigM: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: promCountdownSubsystem,
			Name:      "configured_duration_seconds",
			Help:      "Configured countdown length in seconds of started runs.",
			Buckets:   buckets,
		}),

		countdownLeftOver: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: promCountdownSubsystem,
			Name:      "cancelled_remaining_seconds",
			Help:      "Remaining time in seconds of cancelled countdown runs.",
			Buckets:   buckets,
		}),

		registry: opts.Registry,
	}

	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
	}
	c.registerMetrics(opts.EnableRuntimeMetrics)
	return c
}

func (c *Collector) registerMetrics(runtime bool) {
	c.registry.MustRegister(c.transitionsM)
	c.registry.MustRegister(c.rejectionsM)
	c.registry.MustRegister(c.runningM)
	c.registry.MustRegister(c.stopwatchTotalM)
	c.registry.MustRegister(c.suspendedM)
	c.registry.MustRegister(c.countdownRunsM)
	c.registry.MustRegister(c.countdownConfigM)
	c.registry.MustRegister(c.countdownLeftOver)

	if runtime {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		c.registry.MustRegister(collectors.NewGoCollector())
	}
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Log implements log.Logger.
func (c *Collector) Log(event log.Event) {
	component := label(event.Component.String())

	switch {
	case event.Transition != nil:
		c.observeTransition(component, event.Transition)
	case event.Error != nil:
		c.rejectionsM.WithLabelValues(component, label(event.Error.Op.String()), event.Error.Kind).Inc()
	}
}

func (c *Collector) observeTransition(component string, tr *log.TransitionEvent) {
	c.transitionsM.WithLabelValues(component, label(tr.Op.String())).Inc()

	const running = "RUNNING"
	switch {
	case tr.OldState != running && tr.NewState == running:
		c.runningM.WithLabelValues(component).Inc()
	case tr.OldState == running && tr.NewState != running:
		c.runningM.WithLabelValues(component).Dec()
	}

	switch tr.Op {
	case log.OpStop:
		if tr.Elapsed != nil {
			c.stopwatchTotalM.Observe(tr.Elapsed.Seconds())
		}
	case log.OpResume:
		if tr.Suspended != nil {
			c.suspendedM.Observe(tr.Suspended.Seconds())
		}
	case log.OpStart:
		if tr.Configured != nil {
			c.countdownConfigM.Observe(tr.Configured.Seconds())
		}
	case log.OpExpire:
		c.countdownRunsM.WithLabelValues("expired").Inc()
	case log.OpCancel:
		c.countdownRunsM.WithLabelValues("cancelled").Inc()
		if tr.Remaining != nil {
			c.countdownLeftOver.Observe(tr.Remaining.Seconds())
		}
	}
}

func label(s string) string {
	return strings.ToLower(s)
}

var _ log.Logger = (*Collector)(nil)
