// Package metrics declares the Prometheus collectors for the idea store.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

var (
	// IdeasMerged counts merged idea payloads by outcome (new or updated)
	IdeasMerged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_ideas_merged_total",
		Help: "Idea payloads merged into user collections by outcome",
	}, []string{"outcome"})

	// ArticlesAppended counts article versions created
	ArticlesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "content_ideas_articles_appended_total",
		Help: "Article versions appended",
	})

	// StoreOperations counts store operations by operation and result
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_ideas_store_operations_total",
		Help: "Store operations by operation and result",
	}, []string{"operation", "result"})

	// StoreDuration tracks store operation latency
	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "content_ideas_store_operation_duration_seconds",
		Help:    "Store operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
	}, []string{"operation"})

	// PersistenceErrors counts failed reads and writes by channel (document or counters)
	PersistenceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_ideas_persistence_errors_total",
		Help: "Persistence failures by channel and direction",
	}, []string{"channel", "direction"})

	// LegacyMigrations counts idea records rewritten by the legacy migration
	LegacyMigrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "content_ideas_legacy_migrations_total",
		Help: "Idea records normalized from the legacy schema",
	})

	// Recalibrations counts counter recalibrations by result
	Recalibrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "content_ideas_recalibrations_total",
		Help: "Counter recalibrations by result",
	}, []string{"result"})
)

// ObserveOperation records the result and duration of a store operation
func ObserveOperation(operation, result string, start time.Time) {
	StoreOperations.WithLabelValues(operation, result).Inc()
	StoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
