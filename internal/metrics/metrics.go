// Package metrics exposes validation activity as Prometheus metrics.
//
// A Collector is handed to core.NewValidator through core.WithRecorder and
// counts files, violations, and degraded columns as the validator reports
// them. Metrics register on the caller's Registerer so tests and embedded
// uses can keep them isolated from the default registry.
//
//	reg := prometheus.NewRegistry()
//	v := core.NewValidator(logger, core.WithRecorder(metrics.NewCollector(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"time"

	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "csvprobe"

// Collector implements core.Recorder over Prometheus collectors.
type Collector struct {
	files          *prometheus.CounterVec
	violations     *prometheus.CounterVec
	columnFailures prometheus.Counter
	duration       prometheus.Histogram
}

var _ core.Recorder = (*Collector)(nil)

// NewCollector creates the csvprobe metrics and registers them on reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Files checked, by outcome (valid, invalid, error).",
		}, []string{"status"}),
		violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violations_total",
			Help:      "Invalid cells reported, by error kind.",
		}, []string{"kind"}),
		columnFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "column_failures_total",
			Help:      "Column checks that could not run on the column's storage.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent loading and checking one file.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
	}
}

// FileValidated records one finished file.
func (c *Collector) FileValidated(outcome string, elapsed time.Duration) {
	c.files.WithLabelValues(outcome).Inc()
	c.duration.Observe(elapsed.Seconds())
}

// ViolationsFound adds n invalid cells of the given kind.
func (c *Collector) ViolationsFound(kind core.ErrorKind, n int) {
	if n <= 0 {
		return
	}
	c.violations.WithLabelValues(kind.String()).Add(float64(n))
}

// ColumnFailed counts one degraded column check.
func (c *Collector) ColumnFailed() {
	c.columnFailures.Inc()
}
