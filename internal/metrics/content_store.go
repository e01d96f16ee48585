// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contentStoreRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certichain",
		Subsystem: "content_store",
		Name:      "operations_total",
		Help:      "Count of content store operations.",
	}, []string{"backend", "operation", "status"})
	contentStoreRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "certichain",
		Subsystem: "content_store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of content store operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"backend", "operation", "status"})
	contentStoreBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "certichain",
		Subsystem: "content_store",
		Name:      "put_bytes",
		Help:      "Size of payloads uploaded to the content store.",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB..256MiB
	}, []string{"backend"})
)

// ContentStore tracks metrics for content store clients.
type ContentStore struct {
	backend string
}

// NewContentStore creates a ContentStore collector for a backend name.
func NewContentStore(backend string) *ContentStore {
	if backend == "" {
		backend = "unknown"
	}
	return &ContentStore{backend: backend}
}

// Observe records duration and status of a content store operation.
func (m ContentStore) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	contentStoreRequestsTotal.WithLabelValues(m.backend, operation, status).Inc()
	contentStoreRequestDuration.WithLabelValues(m.backend, operation, status).Observe(time.Since(started).Seconds())
}

// ObserveSize records the size of an uploaded payload.
func (m ContentStore) ObserveSize(size int) {
	contentStoreBytes.WithLabelValues(m.backend).Observe(float64(size))
}
