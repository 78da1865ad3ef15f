package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты операций хранилища.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var (
	// StorageOperations считает обращения к бэкендам хранилища.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propostas_storage_operations_total",
		Help: "Storage backend operations by backend, operation and result.",
	}, []string{"backend", "op", "result"})

	// StorageFallbacks считает случаи, когда сбой удалённого хранилища был поглощён фасадом.
	StorageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propostas_storage_fallbacks_total",
		Help: "Remote storage failures absorbed by the storage facade.",
	}, []string{"op"})

	IndexUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propostas_index_updates_total",
		Help: "Listing index read-modify-write attempts by result.",
	}, []string{"result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propostas_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
