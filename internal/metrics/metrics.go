package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store holds the Prometheus metrics collectors, grounded on the teacher's
// internal/metrics/metrics.go (same promauto-against-a-private-Registry pattern),
// relabeled for diff/apply runs instead of row-level sync.
type Store struct {
	Registry            *prometheus.Registry
	DiffRunning         prometheus.Gauge
	DiffDuration        prometheus.Histogram
	OperationsEmitted   *prometheus.CounterVec
	StatementsGenerated *prometheus.CounterVec
	ApplyDuration       *prometheus.HistogramVec
	ApplyErrorsTotal    *prometheus.CounterVec
	DBConnections       *prometheus.GaugeVec
}

// NewMetricsStore creates and registers Prometheus metrics against a private registry,
// so repeated runs within a single process (e.g. in tests) never collide with the
// default global registry.
func NewMetricsStore() *Store {
	registry := prometheus.NewRegistry()

	store := &Store{
		Registry: registry,
		DiffRunning: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "schemadiff_up",
			Help: "Indicates if a diff/apply run is currently in progress (1 = running, 0 = idle).",
		}),
		DiffDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "schemadiff_run_duration_seconds",
			Help:    "Duration of an entire diff (match + differ + sql generation) run.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		OperationsEmitted: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "schemadiff_operations_emitted_total",
			Help: "Total number of migration operations emitted by the differ, labeled by operation kind.",
		}, []string{"kind"}),
		StatementsGenerated: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "schemadiff_statements_generated_total",
			Help: "Total number of SQL statements rendered by the generator, labeled by dialect.",
		}, []string{"dialect"}),
		ApplyDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schemadiff_apply_statement_duration_seconds",
			Help:    "Duration histogram for executing a whole batch of generated statements against the destination, observed once per apply run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		}, []string{"dialect"}),
		ApplyErrorsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "schemadiff_apply_errors_total",
			Help: "Total number of statement execution errors during apply, labeled by dialect.",
		}, []string{"dialect"}),
		DBConnections: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "schemadiff_db_connections_active",
			Help: "Number of active database connections, labeled source/destination.",
		}, []string{"db_alias"}),
	}

	return store
}
