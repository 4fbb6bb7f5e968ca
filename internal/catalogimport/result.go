package catalogimport

import "fmt"

// Result summarizes one import run.
type Result struct {
	Makes             int      `json:"makes"`
	Pages             int      `json:"pages"`
	Fetched           int      `json:"fetched"`
	Skipped           int      `json:"skipped"`
	Upserted          int64    `json:"upserted"`
	EmbeddingFailures int      `json:"embedding_failures"`
	Errors            []string `json:"errors,omitempty"`
}

func (r *Result) add(other Result) {
	r.Makes += other.Makes
	r.Pages += other.Pages
	r.Fetched += other.Fetched
	r.Skipped += other.Skipped
	r.Upserted += other.Upserted
	r.EmbeddingFailures += other.EmbeddingFailures
	r.Errors = append(r.Errors, other.Errors...)
}

func (r *Result) fail(scope string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", scope, err))
}

func (r Result) String() string {
	return fmt.Sprintf("makes=%d pages=%d fetched=%d skipped=%d upserted=%d embedding_failures=%d errors=%d",
		r.Makes, r.Pages, r.Fetched, r.Skipped, r.Upserted, r.EmbeddingFailures, len(r.Errors))
}
