package profiles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/watchengine/watch-engine-backend/internal/repo"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
)

var upsertColumns = []string{
	"name",
	"bio",
	"preferred_brands",
	"price_range_min",
	"price_range_max",
	"preferred_styles",
	"preferred_features",
	"preferred_materials",
	"preferred_complications",
	"dial_colors",
	"case_sizes",
	"updated_at",
}

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Find(ctx context.Context, userID uuid.UUID) (*models.WatchPreference, error) {
	var row models.WatchPreference
	if err := r.DB(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes the editable columns. The profile image is left untouched.
func (r *Repository) Upsert(ctx context.Context, row *models.WatchPreference) error {
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Omit("profile_image").Create(row).Error
}

// SetImage stores the profile image URL, creating an empty profile when needed.
func (r *Repository) SetImage(ctx context.Context, userID uuid.UUID, url string, at time.Time) error {
	return r.DB(ctx).Exec(
		`INSERT INTO watch_preferences (user_id, profile_image, created_at, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET profile_image = excluded.profile_image, updated_at = excluded.updated_at`,
		userID, url, at.UTC(), at.UTC(),
	).Error
}
