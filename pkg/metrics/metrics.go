package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set bundles every collector the service exports. A nil registerer yields
// no-op collectors so tests and tools can skip metrics entirely.
type Set struct {
	HTTP   *HTTPMetrics
	Search *SearchMetrics
	LLM    *LLMMetrics
	Import *ImportMetrics
}

func NewSet(reg prometheus.Registerer) *Set {
	return &Set{
		HTTP:   NewHTTPMetrics(reg),
		Search: NewSearchMetrics(reg),
		LLM:    NewLLMMetrics(reg),
		Import: NewImportMetrics(reg),
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
