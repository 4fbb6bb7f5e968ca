package search

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchengine/watch-engine-backend/internal/criteria"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
)

type stubWatchSearcher struct {
	rows       []models.Watch
	similar    []watches.SimilarityRow
	searchErr  error
	preds      []watches.Predicate
	limit      int
	simCalls   int
	simQuery   watches.SimilarityQuery
	searchCall int
}

func (s *stubWatchSearcher) Search(_ context.Context, preds []watches.Predicate, limit int) ([]models.Watch, error) {
	s.searchCall++
	s.preds = preds
	s.limit = limit
	return s.rows, s.searchErr
}

func (s *stubWatchSearcher) SimilaritySearch(_ context.Context, q watches.SimilarityQuery) ([]watches.SimilarityRow, error) {
	s.simCalls++
	s.simQuery = q
	return s.similar, nil
}

type stubEmbedder struct {
	vector []float32
	err    error
	text   string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.text = text
	return s.vector, s.err
}

func strPtr(v string) *string { return &v }

func TestDatabaseProviderUsesPredicatesFirst(t *testing.T) {
	repo := &stubWatchSearcher{rows: []models.Watch{{ID: uuid.New(), ModelName: "Submariner"}}}
	provider, err := NewDatabaseProvider(DatabaseProviderParams{Repo: repo})
	require.NoError(t, err)

	result, err := provider.Search(context.Background(), Request{
		Criteria: criteria.Criteria{FamilyName: strPtr("Diver")},
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, result.Source)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 10, repo.limit)
	assert.Zero(t, repo.simCalls)
}

func TestDatabaseProviderFallsBackToSimilarity(t *testing.T) {
	score := 0.82
	repo := &stubWatchSearcher{similar: []watches.SimilarityRow{{
		ID:              uuid.New(),
		ModelName:       "Speedmaster",
		SimilarityScore: score,
	}}}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	provider, err := NewDatabaseProvider(DatabaseProviderParams{Repo: repo, Embedder: embedder, Threshold: 0.6})
	require.NoError(t, err)

	result, err := provider.Search(context.Background(), Request{
		Criteria: criteria.Criteria{FamilyName: strPtr("Chronograph")},
		Query:    "moon watch",
	})
	require.NoError(t, err)
	assert.Equal(t, SourceSimilarity, result.Source)
	require.Len(t, result.Watches, 1)
	require.NotNil(t, result.Watches[0].SimilarityScore)
	assert.InDelta(t, score, *result.Watches[0].SimilarityScore, 0.0001)
	assert.Equal(t, 1, repo.searchCall)
	assert.Equal(t, "moon watch", repo.simQuery.Text)
	assert.Equal(t, 0.6, repo.simQuery.Threshold)
	assert.Equal(t, []float32{0.1, 0.2}, repo.simQuery.Embedding)
	assert.Equal(t, 50, repo.simQuery.Limit)
}

func TestDatabaseProviderSkipsPredicatesForWildcards(t *testing.T) {
	repo := &stubWatchSearcher{}
	provider, err := NewDatabaseProvider(DatabaseProviderParams{Repo: repo})
	require.NoError(t, err)

	c := criteria.Defaults()
	c.DialColor = strPtr("blue")
	result, err := provider.Search(context.Background(), Request{Criteria: c})
	require.NoError(t, err)
	assert.Equal(t, SourceSimilarity, result.Source)
	assert.NotNil(t, result.Watches)
	assert.Equal(t, 1, repo.searchCall)
	assert.Equal(t, "blue", repo.simQuery.Text)
}

func TestDatabaseProviderIgnoresEmbeddingFailure(t *testing.T) {
	repo := &stubWatchSearcher{}
	embedder := &stubEmbedder{err: errors.New("boom")}
	provider, err := NewDatabaseProvider(DatabaseProviderParams{Repo: repo, Embedder: embedder})
	require.NoError(t, err)

	_, err = provider.Search(context.Background(), Request{Query: "gold dress watch"})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.simCalls)
	assert.Nil(t, repo.simQuery.Embedding)
}

func TestDatabaseProviderEmptyTextReturnsNoRows(t *testing.T) {
	repo := &stubWatchSearcher{}
	provider, err := NewDatabaseProvider(DatabaseProviderParams{Repo: repo})
	require.NoError(t, err)

	result, err := provider.Search(context.Background(), Request{Criteria: criteria.Defaults()})
	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.Zero(t, repo.simCalls)
}

func TestDatabaseProviderWrapsRepositoryErrors(t *testing.T) {
	repo := &stubWatchSearcher{searchErr: errors.New("connection reset")}
	provider, err := NewDatabaseProvider(DatabaseProviderParams{Repo: repo})
	require.NoError(t, err)

	_, err = provider.Search(context.Background(), Request{Criteria: criteria.Criteria{ModelName: strPtr("Nautilus")}})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}

func TestNewDatabaseProviderRequiresRepo(t *testing.T) {
	_, err := NewDatabaseProvider(DatabaseProviderParams{})
	require.Error(t, err)
}
