package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// GatewayMetrics records every round trip made to the backing stores.
type GatewayMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

// NewGatewayMetrics registers the gateway metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	if reg == nil {
		return &GatewayMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "gateway_call_duration_seconds",
		Help:      "Duration of backend gateway calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "gateway_calls_total",
		Help:      "Backend gateway calls by operation and outcome.",
	}, []string{"op", "outcome"})
	reg.MustRegister(duration, calls)
	return &GatewayMetrics{duration: duration, calls: calls}
}

// Observe records one call of op that started at start and ended with err.
func (g *GatewayMetrics) Observe(op string, start time.Time, err error) {
	if g == nil || g.duration == nil {
		return
	}
	op = normalizeLabel(op)
	g.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	g.calls.WithLabelValues(op, outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
