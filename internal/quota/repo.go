package quota

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/watchengine/watch-engine-backend/internal/repo"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
)

const incrementSQL = `INSERT INTO user_searches (user_id, search_date, search_count, created_at, updated_at)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT (user_id, search_date)
DO UPDATE SET search_count = user_searches.search_count + 1, updated_at = excluded.updated_at
RETURNING search_count`

// incrementBelowSQL only bumps the counter while it is under the limit, so
// concurrent searches cannot push a user past it. No row comes back once
// the limit is reached.
const incrementBelowSQL = `INSERT INTO user_searches (user_id, search_date, search_count, created_at, updated_at)
VALUES (?, ?, 1, ?, ?)
ON CONFLICT (user_id, search_date)
DO UPDATE SET search_count = user_searches.search_count + 1, updated_at = excluded.updated_at
WHERE user_searches.search_count < ?
RETURNING search_count`

// Repository persists per-user daily search counters.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Count returns the searches recorded for userID on day (YYYY-MM-DD).
func (r *Repository) Count(ctx context.Context, userID uuid.UUID, day string) (int, error) {
	var row models.UserSearch
	err := r.DB(ctx).
		Select("search_count").
		Where("user_id = ? AND search_date = ?", userID, day).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return 0, err
	}
	return row.SearchCount, nil
}

// Increment adds one search for userID on day and returns the new count.
func (r *Repository) Increment(ctx context.Context, userID uuid.UUID, day string, at time.Time) (int, error) {
	var count int
	if err := r.DB(ctx).Raw(incrementSQL, userID, day, at, at).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IncrementBelow adds one search only while the count is below limit. ok is
// false when the limit was already reached and nothing changed.
func (r *Repository) IncrementBelow(ctx context.Context, userID uuid.UUID, day string, limit int, at time.Time) (count int, ok bool, err error) {
	var counts []int
	if err := r.DB(ctx).Raw(incrementBelowSQL, userID, day, at, at, limit).Scan(&counts).Error; err != nil {
		return 0, false, err
	}
	if len(counts) == 0 {
		return 0, false, nil
	}
	return counts[0], true, nil
}
