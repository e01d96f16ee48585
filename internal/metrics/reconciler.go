package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/certichain-backend/internal/model"
)

var (
	issueTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certichain",
		Subsystem: "reconciler",
		Name:      "issue_total",
		Help:      "Count of issuance requests by outcome.",
	}, []string{"outcome"})

	issueDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "certichain",
		Subsystem: "reconciler",
		Name:      "issue_duration_seconds",
		Help:      "Duration of issuance requests.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"outcome"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certichain",
		Subsystem: "reconciler",
		Name:      "transitions_total",
		Help:      "Count of record transitions to a terminal status.",
	}, []string{"status"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certichain",
		Subsystem: "reconciler",
		Name:      "retries_total",
		Help:      "Count of retried infrastructure calls.",
	}, []string{"step"})

	taskBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certichain",
		Subsystem: "reconciler",
		Name:      "task_batch_total",
		Help:      "Count of background task batches.",
	}, []string{"status"})

	taskBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "certichain",
		Subsystem: "reconciler",
		Name:      "task_batch_size",
		Help:      "Number of tasks claimed per batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1..512
	})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "certichain",
		Subsystem: "reconciler",
		Name:      "task_duration_seconds",
		Help:      "Duration of processing a single background task.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
)

// Reconciler tracks metrics for issuance and background reconciliation.
type Reconciler struct{}

// NewReconciler constructs a Reconciler collector.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// ObserveIssue records an issuance outcome and duration.
func (m Reconciler) ObserveIssue(outcome string, started time.Time) {
	if outcome == "" {
		outcome = "unknown"
	}
	issueTotal.WithLabelValues(outcome).Inc()
	issueDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}

// ObserveTransition records a record reaching a terminal status.
func (m Reconciler) ObserveTransition(status model.Status) {
	transitionsTotal.WithLabelValues(string(status)).Inc()
}

// ObserveRetry records a retried call for a protocol step.
func (m Reconciler) ObserveRetry(step string) {
	retriesTotal.WithLabelValues(step).Inc()
}

// ObserveTaskBatch records a claimed batch of background tasks.
func (m Reconciler) ObserveTaskBatch(err error, tasks int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	taskBatchTotal.WithLabelValues(status).Inc()
	if tasks > 0 {
		taskBatchSize.Observe(float64(tasks))
	}
}

// ObserveTask records processing of a single background task.
func (m Reconciler) ObserveTask(err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	taskDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
}
