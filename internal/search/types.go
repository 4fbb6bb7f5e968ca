package search

import (
	"context"

	"github.com/google/uuid"

	"github.com/watchengine/watch-engine-backend/internal/criteria"
	"github.com/watchengine/watch-engine-backend/internal/watches"
)

// Result sources reported to clients.
const (
	SourceDatabase   = "database"
	SourceSimilarity = "similarity"
	SourceLLM        = "llm"
	SourceCatalog    = "catalog"
)

// Request is one search call. UserID is nil for anonymous callers.
type Request struct {
	Criteria criteria.Criteria
	Query    string
	Provider string
	Limit    int
	UserID   *uuid.UUID
}

// Result is the uniform search answer.
type Result struct {
	Watches []watches.WatchDTO `json:"watches"`
	Source  string             `json:"source"`
	Count   int                `json:"count"`
}

func newResult(source string, rows []watches.WatchDTO) Result {
	if rows == nil {
		rows = []watches.WatchDTO{}
	}
	return Result{Watches: rows, Source: source, Count: len(rows)}
}

// Provider runs a search against one backend.
type Provider interface {
	Search(ctx context.Context, req Request) (Result, error)
}
