package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// LLMMetrics tracks chat and embedding calls plus the circuit breaker state.
type LLMMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	breaker  *prometheus.GaugeVec
}

func NewLLMMetrics(reg prometheus.Registerer) *LLMMetrics {
	if reg == nil {
		return &LLMMetrics{}
	}
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_calls_total",
		Help: "LLM calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_call_duration_seconds",
		Help:    "LLM call latency by operation.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"operation"})
	breaker := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "llm_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"breaker"})
	reg.MustRegister(calls, duration, breaker)
	return &LLMMetrics{calls: calls, duration: duration, breaker: breaker}
}

func (m *LLMMetrics) ObserveCall(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.calls == nil {
		return
	}
	operation = normalizeLabel(operation)
	m.calls.WithLabelValues(operation, normalizeLabel(outcome)).Inc()
	if elapsed > 0 {
		m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

// SetBreakerState stores the numeric breaker state (see gobreaker.State).
func (m *LLMMetrics) SetBreakerState(name string, state int) {
	if m == nil || m.breaker == nil {
		return
	}
	m.breaker.WithLabelValues(normalizeLabel(name)).Set(float64(state))
}
