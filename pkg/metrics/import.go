package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records catalog import progress per make.
type ImportMetrics struct {
	rows     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_rows_total",
		Help: "Catalog rows processed by make and outcome (upserted, skipped).",
	}, []string{"make", "outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_failures_total",
		Help: "Catalog import failures by make and stage.",
	}, []string{"make", "stage"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_import_duration_seconds",
		Help:    "Duration of catalog import jobs.",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
	}, []string{"job"})
	reg.MustRegister(rows, failures, duration)
	return &ImportMetrics{rows: rows, failures: failures, duration: duration}
}

func (m *ImportMetrics) AddRows(makeID, outcome string, n int) {
	if m == nil || m.rows == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(makeID), normalizeLabel(outcome)).Add(float64(n))
}

func (m *ImportMetrics) IncFailure(makeID, stage string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(makeID), normalizeLabel(stage)).Inc()
}

func (m *ImportMetrics) ObserveDuration(job string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(elapsed.Seconds())
}
