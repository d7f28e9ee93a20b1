package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the benchmark collectors on a private registry, so several
// harnesses in one process never collide.
type Metrics struct {
	registry *prometheus.Registry

	queryDuration *prometheus.HistogramVec
	queryRows     *prometheus.GaugeVec
	queryFailures *prometheus.CounterVec
}

// NewMetrics creates and registers the benchmark collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "graphbench_query_duration_seconds",
			Help:    "Wall-clock duration of timed benchmark query runs.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 18),
		}, []string{"backend", "query"}),
		queryRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "graphbench_query_rows",
			Help: "Rows returned by the last run of each query.",
		}, []string{"backend", "query"}),
		queryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphbench_query_failures_total",
			Help: "Benchmark query runs that returned an error.",
		}, []string{"backend", "query"}),
	}
	m.registry.MustRegister(m.queryDuration, m.queryRows, m.queryFailures)
	return m
}

// ObserveQuery records one timed run.
func (m *Metrics) ObserveQuery(backend, query string, elapsed time.Duration, rows int) {
	m.queryDuration.WithLabelValues(backend, query).Observe(elapsed.Seconds())
	m.queryRows.WithLabelValues(backend, query).Set(float64(rows))
}

// QueryFailed counts one failed run.
func (m *Metrics) QueryFailed(backend, query string) {
	m.queryFailures.WithLabelValues(backend, query).Inc()
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
