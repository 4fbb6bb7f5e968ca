package search

import (
	"context"
	"strings"

	"github.com/watchengine/watch-engine-backend/internal/watches"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	"github.com/watchengine/watch-engine-backend/pkg/llm"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

type watchSearcher interface {
	Search(ctx context.Context, preds []watches.Predicate, limit int) ([]models.Watch, error)
	SimilaritySearch(ctx context.Context, q watches.SimilarityQuery) ([]watches.SimilarityRow, error)
}

// DatabaseProvider runs the column predicates first and falls back to the
// similarity procedure when there are no predicates or no matching rows.
// The two tiers are never merged.
type DatabaseProvider struct {
	repo      watchSearcher
	embedder  llm.Embedder
	threshold float64
	limit     int
	logg      *logger.Logger
}

type DatabaseProviderParams struct {
	Repo      watchSearcher
	Embedder  llm.Embedder
	Threshold float64
	Limit     int
	Logger    *logger.Logger
}

func NewDatabaseProvider(params DatabaseProviderParams) (*DatabaseProvider, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "watch repository is required")
	}
	threshold := params.Threshold
	if threshold <= 0 {
		threshold = 0.7
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	return &DatabaseProvider{
		repo:      params.Repo,
		embedder:  params.Embedder,
		threshold: threshold,
		limit:     limit,
		logg:      params.Logger,
	}, nil
}

func (p *DatabaseProvider) Search(ctx context.Context, req Request) (Result, error) {
	limit := clampLimit(req.Limit, p.limit)

	if preds := watches.PredicatesFor(req.Criteria); len(preds) > 0 {
		rows, err := p.repo.Search(ctx, preds, limit)
		if err != nil {
			return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to search for watches")
		}
		if len(rows) > 0 {
			return newResult(SourceDatabase, watches.FromModels(rows)), nil
		}
	}

	text := strings.TrimSpace(req.Query)
	if text == "" {
		text = req.Criteria.Text()
	}
	if text == "" {
		return newResult(SourceSimilarity, nil), nil
	}

	rows, err := p.repo.SimilaritySearch(ctx, watches.SimilarityQuery{
		Text:      text,
		Threshold: p.threshold,
		Embedding: p.embed(ctx, text),
		Limit:     limit,
	})
	if err != nil {
		return Result{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to search for watches")
	}
	out := make([]watches.WatchDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDTO())
	}
	return newResult(SourceSimilarity, out), nil
}

// embed returns nil when no embedder is configured or the call fails; the
// procedure then scores by trigram similarity.
func (p *DatabaseProvider) embed(ctx context.Context, text string) []float32 {
	if p.embedder == nil {
		return nil
	}
	vector, err := p.embedder.Embed(ctx, text)
	if err != nil {
		if p.logg != nil {
			p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "search.embedding_failed")
		}
		return nil
	}
	return vector
}

func clampLimit(requested, max int) int {
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}
