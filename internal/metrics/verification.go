package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certichain",
		Subsystem: "verification",
		Name:      "verify_total",
		Help:      "Count of verification lookups by outcome.",
	}, []string{"outcome"})
	verifyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "certichain",
		Subsystem: "verification",
		Name:      "verify_duration_seconds",
		Help:      "Duration of verification lookups.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
)

// Verification tracks metrics for the verification engine.
type Verification struct{}

// NewVerification constructs a Verification collector.
func NewVerification() *Verification {
	return &Verification{}
}

// ObserveVerify records a verification outcome. A non-nil err overrides outcome with "error".
func (m Verification) ObserveVerify(outcome string, err error, started time.Time) {
	if err != nil {
		outcome = "error"
	}
	verifyTotal.WithLabelValues(outcome).Inc()
	verifyDuration.WithLabelValues(outcome).Observe(time.Since(started).Seconds())
}
