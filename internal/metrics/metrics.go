// Package metrics exposes engine and log pipeline counters in Prometheus
// format.
package metrics

import (
	"hotbackup/internal/model"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hotbackup"

type Metrics struct {
	registry     *prometheus.Registry
	actions      *prometheus.CounterVec
	failures     *prometheus.CounterVec
	passes       prometheus.Counter
	passDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Completed engine actions by type.",
		}, []string{"action"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed engine actions by type.",
		}, []string{"action"}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Completed crawl passes.",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of a crawl pass.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	m.registry.MustRegister(m.actions, m.failures, m.passes, m.passDuration)
	return m
}

func (m *Metrics) Record(result model.SyncResult) {
	if result.Err != nil {
		m.failures.WithLabelValues(string(result.Action)).Inc()
		return
	}
	m.actions.WithLabelValues(string(result.Action)).Inc()
}

func (m *Metrics) ObservePass(took time.Duration) {
	m.passes.Inc()
	m.passDuration.Observe(took.Seconds())
}

// WatchLogPipeline publishes the queue depth and the number of lines written.
func (m *Metrics) WatchLogPipeline(queueDepth func() int, written func() int64) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "log_queue_depth",
			Help:      "Log lines waiting to be written.",
		}, func() float64 { return float64(queueDepth()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_lines_written_total",
			Help:      "Log lines appended to the log file.",
		}, func() float64 { return float64(written()) }),
	)
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
