// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store holds the Prometheus metrics collectors.
type Store struct {
	Registry                 *prometheus.Registry // Use a custom registry
	ScriptsGeneratedTotal    *prometheus.CounterVec
	ScriptGenerationDuration *prometheus.HistogramVec
	StatementsGeneratedTotal *prometheus.CounterVec
	GenerationErrorsTotal    *prometheus.CounterVec
	ApplyRunning             prometheus.Gauge
	ApplyDuration            prometheus.Histogram
	StatementsExecutedTotal  *prometheus.CounterVec
	SequencesReadTotal       *prometheus.CounterVec
	DBConnections            *prometheus.GaugeVec
}

// NewMetricsStore creates and registers Prometheus metrics.
func NewMetricsStore() *Store {
	registry := prometheus.NewRegistry() // Create a non-global registry

	store := &Store{
		Registry: registry,
		ScriptsGeneratedTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "oradelta_scripts_generated_total",
			Help: "Total number of alter scripts generated, labeled by level.",
		}, []string{"level"}), // Labels: entity, container
		ScriptGenerationDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oradelta_script_generation_duration_seconds",
			Help:    "Duration histogram for turning a delta model into an alter script.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"level"}),
		StatementsGeneratedTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "oradelta_statements_generated_total",
			Help: "Total number of statement fragments generated, labeled by kind.",
		}, []string{"kind"}), // Kinds: drop, other
		GenerationErrorsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "oradelta_generation_errors_total",
			Help: "Total number of failed generation requests, labeled by level.",
		}, []string{"level"}),
		ApplyRunning: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "oradelta_apply_running",
			Help: "Indicates if a script is currently being applied (1 = running, 0 = idle).",
		}),
		ApplyDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "oradelta_apply_duration_seconds",
			Help:    "Duration of applying a whole script to an instance.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14), // 100ms to ~27min
		}),
		StatementsExecutedTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "oradelta_statements_executed_total",
			Help: "Total number of statements executed against an instance, labeled by status.",
		}, []string{"status"}), // Status: success, ignored, failed
		SequencesReadTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "oradelta_sequences_read_total",
			Help: "Total number of sequences read by reverse engineering, labeled by schema.",
		}, []string{"schema"}),
		DBConnections: promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
			Name: "oradelta_db_connections_open",
			Help: "Number of open database connections.",
		}, []string{"db_alias"}),
	}

	return store
}
