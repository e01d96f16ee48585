package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ledgerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certichain",
		Subsystem: "ledger_client",
		Name:      "operations_total",
		Help:      "Count of ledger client operations.",
	}, []string{"backend", "operation", "status"})
	ledgerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "certichain",
		Subsystem: "ledger_client",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ledger client operations.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"backend", "operation", "status"})
)

// LedgerClient tracks metrics for ledger clients.
type LedgerClient struct {
	backend string
}

// NewLedgerClient creates a LedgerClient collector for a backend name.
func NewLedgerClient(backend string) *LedgerClient {
	if backend == "" {
		backend = "unknown"
	}
	return &LedgerClient{backend: backend}
}

// Observe records duration and status of a ledger operation.
// Timeouts and missing entries are expected outcomes and get their own status.
func (m LedgerClient) Observe(operation string, err error, started time.Time) {
	status := ledgerStatus(err)
	ledgerRequestsTotal.WithLabelValues(m.backend, operation, status).Inc()
	ledgerRequestDuration.WithLabelValues(m.backend, operation, status).Observe(time.Since(started).Seconds())
}
