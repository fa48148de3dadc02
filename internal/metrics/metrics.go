// Package metrics defines Prometheus metrics for the audit store.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AuditsSavedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_store_audits_saved_total",
			Help: "Audits persisted, by scope",
		},
		[]string{"scope"},
	)

	AuditsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_store_audits_deleted_total",
			Help: "Audits deleted by id",
		},
	)

	AuditsDiscardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_store_audits_discarded_total",
			Help: "Audits passed to batch save, which does not persist",
		},
	)

	AuditsEnqueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_store_audits_enqueued_total",
			Help: "Audits published for asynchronous persistence",
		},
	)

	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_store_errors_total",
			Help: "Store failures by operation",
		},
		[]string{"operation"},
	)

	ConsumerMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_store_consumer_messages_total",
			Help: "Kafka ingest messages by outcome",
		},
		[]string{"outcome"}, // recorded|skipped|failed
	)

	RetentionDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_store_retention_deleted_total",
			Help: "Audits removed by the retention job",
		},
	)
)

var registerOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			AuditsSavedTotal,
			AuditsDeletedTotal,
			AuditsDiscardedTotal,
			AuditsEnqueuedTotal,
			StoreErrorsTotal,
			ConsumerMessagesTotal,
			RetentionDeletedTotal,
		)
	})
}

// Handler serves the default registry.
var Handler = promhttp.Handler
