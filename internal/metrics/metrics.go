package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storebot"

// Metrics holds service collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	finalize      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	pollTasks     prometheus.Gauge
	sweepDuration prometheus.Histogram
}

// New creates and registers collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		finalize: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalize_total",
			Help:      "Finalization attempts by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Outgoing chat messages by delivery result.",
		}, []string{"result"}),
		pollTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "poll_tasks_active",
			Help:      "Number of running per-order payment pollers.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of pending payment sweeps.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.finalize,
		m.notifications,
		m.pollTasks,
		m.sweepDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// FinalizeOutcome counts one finalization attempt.
func (m *Metrics) FinalizeOutcome(trigger, outcome string) {
	if m == nil {
		return
	}
	m.finalize.WithLabelValues(trigger, outcome).Inc()
}

// Notification counts one delivery attempt.
func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

// PollTaskStarted increments active poller gauge.
func (m *Metrics) PollTaskStarted() {
	if m == nil {
		return
	}
	m.pollTasks.Inc()
}

// PollTaskDone decrements active poller gauge.
func (m *Metrics) PollTaskDone() {
	if m == nil {
		return
	}
	m.pollTasks.Dec()
}

// ObserveSweep records sweep duration.
func (m *Metrics) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
