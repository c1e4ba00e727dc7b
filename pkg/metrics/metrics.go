// Package metrics exposes Prometheus metrics for the calendar bridge:
// sync cycle outcomes, per-item write actions, fetch retries and cache
// latencies.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Item action labels recorded per synchronized schedule.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionNoop   = "noop"
	ActionFail   = "fail"
)

// Cycle result labels.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// Manager owns the metric instruments and their registry.
type Manager struct {
	namespace string
	registry  *prometheus.Registry

	cyclesTotal     *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	itemsTotal      *prometheus.CounterVec
	fetchRetries    prometheus.Counter
	storeOpDuration *prometheus.HistogramVec
	lastSuccessUnix prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// NewManager creates a Manager with its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "calbridge",
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)
	m.cyclesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "sync",
		Name: "cycles_total", Help: "Completed sync cycles by result.",
	}, []string{"result"})
	m.cycleDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "sync",
		Name: "cycle_duration_seconds", Help: "Duration of one full sync cycle.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	m.itemsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "sync",
		Name: "items_total", Help: "Per-schedule sync outcomes by action.",
	}, []string{"action"})
	m.fetchRetries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "sync",
		Name: "fetch_retries_total", Help: "Retries of the bulk source fetch.",
	})
	m.storeOpDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "store",
		Name: "op_duration_seconds", Help: "Schedule cache operation latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	m.lastSuccessUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "sync",
		Name: "last_success_timestamp_seconds", Help: "Unix time of the last successful cycle.",
	})

	return m
}

// IncCycle records one finished cycle with the given result label.
func (m *Manager) IncCycle(result string) { m.cyclesTotal.WithLabelValues(result).Inc() }

// ObserveCycleDuration records the wall time of one cycle.
func (m *Manager) ObserveCycleDuration(d time.Duration) { m.cycleDuration.Observe(d.Seconds()) }

// IncItem records one per-schedule outcome.
func (m *Manager) IncItem(action string) { m.itemsTotal.WithLabelValues(action).Inc() }

// IncFetchRetry records one retry of the bulk fetch.
func (m *Manager) IncFetchRetry() { m.fetchRetries.Inc() }

// ObserveStoreOp records cache operation latency.
func (m *Manager) ObserveStoreOp(op string, d time.Duration) {
	m.storeOpDuration.WithLabelValues(op).Observe(d.Seconds())
}

// SetLastSuccess records the completion time of a successful cycle.
func (m *Manager) SetLastSuccess(t time.Time) { m.lastSuccessUnix.Set(float64(t.Unix())) }

// Handler serves this manager's registry over HTTP.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Global manager used by components that don't take an explicit one.
var global = NewManager() //nolint:gochecknoglobals // process-wide instruments

// IncCycle records one finished cycle on the global manager.
func IncCycle(result string) { global.IncCycle(result) }

// ObserveCycleDuration records cycle wall time on the global manager.
func ObserveCycleDuration(d time.Duration) { global.ObserveCycleDuration(d) }

// IncItem records one per-schedule outcome on the global manager.
func IncItem(action string) { global.IncItem(action) }

// IncFetchRetry records one bulk fetch retry on the global manager.
func IncFetchRetry() { global.IncFetchRetry() }

// ObserveStoreOp records cache latency on the global manager.
func ObserveStoreOp(op string, d time.Duration) { global.ObserveStoreOp(op, d) }

// SetLastSuccess records the last successful cycle on the global manager.
func SetLastSuccess(t time.Time) { global.SetLastSuccess(t) }

// Handler serves the global registry.
func Handler() http.Handler { return global.Handler() }
