package metrics

import "github.com/prometheus/client_golang/prometheus"

// SearchMetrics counts completed searches per result source and quota rejections.
type SearchMetrics struct {
	searches *prometheus.CounterVec
	results  *prometheus.HistogramVec
	quota    prometheus.Counter
}

func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	if reg == nil {
		return &SearchMetrics{}
	}
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "watch_searches_total",
		Help: "Completed watch searches by result source.",
	}, []string{"source"})
	results := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "watch_search_results",
		Help:    "Number of watches returned per search.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	}, []string{"source"})
	quota := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "watch_search_quota_rejections_total",
		Help: "Searches rejected by the per-user daily quota.",
	})
	reg.MustRegister(searches, results, quota)
	return &SearchMetrics{searches: searches, results: results, quota: quota}
}

func (m *SearchMetrics) ObserveSearch(source string, count int) {
	if m == nil || m.searches == nil {
		return
	}
	source = normalizeLabel(source)
	m.searches.WithLabelValues(source).Inc()
	m.results.WithLabelValues(source).Observe(float64(count))
}

func (m *SearchMetrics) IncQuotaRejected() {
	if m == nil || m.quota == nil {
		return
	}
	m.quota.Inc()
}
