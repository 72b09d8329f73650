// Package metrics holds the Prometheus collectors shared by the ledger.
//
// Label values are drawn from small fixed sets (collection names, operation
// names, result kinds) so cardinality stays bounded. Collectors register with
// the default registry on import.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// storageOps counts backend calls by collection, operation and result.
	storageOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_storage_operations_total",
			Help: "Total number of storage operations.",
		},
		[]string{"collection", "op", "result"},
	)

	// storageLat records backend call duration in seconds.
	storageLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_storage_operation_duration_seconds",
			Help:    "Duration of storage operations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"collection", "op"},
	)

	// ledgerOps counts ledger operations by name and outcome.
	ledgerOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of ledger operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	// eventsPublished counts published change events.
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_events_published_total",
			Help: "Total number of ledger events published.",
		},
		[]string{"type", "result"},
	)
)

func init() {
	prometheus.MustRegister(storageOps, storageLat, ledgerOps, eventsPublished)
}

// ObserveStorage records one storage call that started at start.
func ObserveStorage(collection, op string, start time.Time, err error) {
	storageLat.WithLabelValues(collection, op).Observe(time.Since(start).Seconds())
	storageOps.WithLabelValues(collection, op, resultLabel(err)).Inc()
}

// ObserveOperation records the outcome of a ledger operation. kind is "ok"
// on success, otherwise a short error class such as "not_found".
func ObserveOperation(operation, kind string) {
	ledgerOps.WithLabelValues(operation, kind).Inc()
}

// ObserveEvent records a publish attempt for an event type.
func ObserveEvent(eventType string, err error) {
	eventsPublished.WithLabelValues(eventType, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
