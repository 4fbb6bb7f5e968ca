package watches

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/watchengine/watch-engine-backend/internal/repo"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	"github.com/watchengine/watch-engine-backend/pkg/pagination"
)

const similarityQuery = `SELECT * FROM search_watches_by_similarity(?, ?, ?, ?)`

// upsertColumns are refreshed when a catalog row is imported again.
var upsertColumns = []string{
	"reference", "brand_id", "model_name", "family_name", "movement_name", "function_name",
	"year_produced", "limited_edition", "price_eur", "image_url", "image_filename",
	"description", "dial_color", "raw_data", "last_updated",
}

// upsertAssignments overwrites upsertColumns and keeps the stored embedding
// when the incoming row has none.
func upsertAssignments() clause.Set {
	set := clause.AssignmentColumns(upsertColumns)
	return append(set, clause.Assignment{
		Column: clause.Column{Name: "embedding"},
		Value:  gorm.Expr("COALESCE(excluded.embedding, watches.embedding)"),
	})
}

// Repository encapsulates watch persistence.
type Repository struct {
	repo.Base
}

// NewRepository constructs a watch repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Search applies every predicate with AND semantics.
func (r *Repository) Search(ctx context.Context, preds []Predicate, limit int) ([]models.Watch, error) {
	query := r.DB(ctx).Model(&models.Watch{}).Omit("embedding", "raw_data")
	for _, p := range preds {
		fragment, arg, ok := p.clause()
		if !ok {
			continue
		}
		query = query.Where(fragment, arg)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.Watch
	if err := query.Order("model_name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SimilarityQuery holds the arguments of search_watches_by_similarity.
type SimilarityQuery struct {
	Text      string
	Threshold float64
	Embedding []float32
	Limit     int
}

// SimilaritySearch calls the stored procedure. Without an embedding the
// procedure falls back to trigram similarity over the name columns.
func (r *Repository) SimilaritySearch(ctx context.Context, q SimilarityQuery) ([]SimilarityRow, error) {
	var embedding any
	if len(q.Embedding) > 0 {
		embedding = pgvector.NewVector(q.Embedding)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	var rows []SimilarityRow
	if err := r.DB(ctx).Raw(similarityQuery, strings.TrimSpace(q.Text), q.Threshold, embedding, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts or refreshes rows keyed by (source, external_id) and
// reports how many rows were written.
func (r *Repository) Upsert(ctx context.Context, rows []models.Watch) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	result := r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source"}, {Name: "external_id"}},
		DoUpdates: upsertAssignments(),
	}).Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// FindByID loads a watch by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Watch, error) {
	var watch models.Watch
	if err := r.DB(ctx).Omit("embedding").First(&watch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &watch, nil
}

// Exists reports whether a watch id is known.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.Watch{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByBrand returns a newest-first cursor page of a brand's watches.
func (r *Repository) ListByBrand(ctx context.Context, brandID int64, params pagination.Params) (pagination.Page[models.Watch], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Watch]{}, err
	}

	query := r.DB(ctx).
		Model(&models.Watch{}).
		Omit("embedding", "raw_data").
		Where("brand_id = ?", brandID)

	var rows []models.Watch
	if err := query.
		Scopes(pagination.Keyset(cursor, "created_at", "id")).
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return pagination.Page[models.Watch]{}, err
	}

	return pagination.Trim(rows, params.Limit, func(w models.Watch) pagination.Cursor {
		return pagination.Cursor{CreatedAt: w.CreatedAt, ID: w.ID}
	}), nil
}
