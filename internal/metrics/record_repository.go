package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordRepositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certichain",
		Subsystem: "record_repository",
		Name:      "operations_total",
		Help:      "Count of certificate record repository operations.",
	}, []string{"dialect", "operation", "status"})
	recordRepositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "certichain",
		Subsystem: "record_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of certificate record repository operations.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"dialect", "operation", "status"})
)

// RecordRepository tracks metrics for the relational record store.
type RecordRepository struct {
	dialect string
}

// NewRecordRepository creates a RecordRepository collector.
func NewRecordRepository(dialect string) *RecordRepository {
	if dialect == "" {
		dialect = "unknown"
	}
	return &RecordRepository{dialect: dialect}
}

// Observe records duration and status of a repository operation.
func (m RecordRepository) Observe(operation string, err error, started time.Time) {
	status := recordStatus(err)
	recordRepositoryRequestsTotal.WithLabelValues(m.dialect, operation, status).Inc()
	recordRepositoryRequestDuration.WithLabelValues(m.dialect, operation, status).Observe(time.Since(started).Seconds())
}
