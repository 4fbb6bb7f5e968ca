package favorites

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/watchengine/watch-engine-backend/internal/repo"
	"github.com/watchengine/watch-engine-backend/internal/watches"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	"github.com/watchengine/watch-engine-backend/pkg/pagination"
)

// Repository encapsulates favorites persistence.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Add inserts a favorite and ignores duplicates. It reports whether a row was written.
func (r *Repository) Add(ctx context.Context, userID, watchID uuid.UUID, at time.Time) (bool, error) {
	if userID == uuid.Nil || watchID == uuid.Nil {
		return false, gorm.ErrInvalidValue
	}
	result := r.DB(ctx).Exec(
		`INSERT INTO favorites (id, user_id, watch_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, watch_id) DO NOTHING`,
		uuid.New(), userID, watchID, at.UTC(),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Remove deletes the favorite if it exists and reports whether one was removed.
func (r *Repository) Remove(ctx context.Context, userID, watchID uuid.UUID) (bool, error) {
	result := r.DB(ctx).
		Where("user_id = ? AND watch_id = ?", userID, watchID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) Exists(ctx context.Context, userID, watchID uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND watch_id = ?", userID, watchID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListIDs returns every favorited watch id for the user, newest first.
func (r *Repository) ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.DB(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Pluck("watch_id", &ids).Error; err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// List returns a cursor page of favorites joined with their watch rows.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (pagination.Page[FavoriteDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[FavoriteDTO]{}, err
	}

	selectColumns := []string{
		"f.id AS favorite_id",
		"f.created_at AS favorited_at",
		"w.id AS watch_id",
		"w.external_id",
		"w.reference",
		"w.brand_id",
		"w.model_name",
		"w.family_name",
		"w.movement_name",
		"w.function_name",
		"w.year_produced",
		"w.limited_edition",
		"w.price_eur",
		"w.image_url",
		"w.image_filename",
		"w.description",
		"w.dial_color",
		"w.source",
		"w.created_at AS watch_created_at",
		"w.last_updated",
	}

	query := r.DB(ctx).
		Table("favorites f").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN watches w ON w.id = f.watch_id").
		Where("f.user_id = ?", userID)

	var records []favoriteRecord
	if err := query.
		Scopes(pagination.Keyset(cursor, "f.created_at", "f.id")).
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Scan(&records).Error; err != nil {
		return pagination.Page[FavoriteDTO]{}, err
	}

	page := pagination.Trim(records, params.Limit, func(rec favoriteRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: rec.FavoritedAt, ID: rec.FavoriteID}
	})
	items := make([]FavoriteDTO, 0, len(page.Items))
	for _, rec := range page.Items {
		items = append(items, rec.toDTO())
	}
	return pagination.Page[FavoriteDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

type favoriteRecord struct {
	FavoriteID     uuid.UUID           `gorm:"column:favorite_id"`
	FavoritedAt    time.Time           `gorm:"column:favorited_at"`
	WatchID        uuid.UUID           `gorm:"column:watch_id"`
	ExternalID     *string             `gorm:"column:external_id"`
	Reference      *string             `gorm:"column:reference"`
	BrandID        *int64              `gorm:"column:brand_id"`
	ModelName      string              `gorm:"column:model_name"`
	FamilyName     *string             `gorm:"column:family_name"`
	MovementName   *string             `gorm:"column:movement_name"`
	FunctionName   *string             `gorm:"column:function_name"`
	YearProduced   *string             `gorm:"column:year_produced"`
	LimitedEdition bool                `gorm:"column:limited_edition"`
	PriceEUR       decimal.NullDecimal `gorm:"column:price_eur"`
	ImageURL       *string             `gorm:"column:image_url"`
	ImageFilename  *string             `gorm:"column:image_filename"`
	Description    *string             `gorm:"column:description"`
	DialColor      *string             `gorm:"column:dial_color"`
	Source         string              `gorm:"column:source"`
	WatchCreatedAt time.Time           `gorm:"column:watch_created_at"`
	LastUpdated    time.Time           `gorm:"column:last_updated"`
}

func (r favoriteRecord) toDTO() FavoriteDTO {
	return FavoriteDTO{
		ID: r.FavoriteID,
		Watch: watches.FromModel(&models.Watch{
			ID:             r.WatchID,
			ExternalID:     r.ExternalID,
			Reference:      r.Reference,
			BrandID:        r.BrandID,
			ModelName:      r.ModelName,
			FamilyName:     r.FamilyName,
			MovementName:   r.MovementName,
			FunctionName:   r.FunctionName,
			YearProduced:   r.YearProduced,
			LimitedEdition: r.LimitedEdition,
			PriceEUR:       r.PriceEUR,
			ImageURL:       r.ImageURL,
			ImageFilename:  r.ImageFilename,
			Description:    r.Description,
			DialColor:      r.DialColor,
			Source:         r.Source,
			CreatedAt:      r.WatchCreatedAt,
			LastUpdated:    r.LastUpdated,
		}),
		FavoritedAt: r.FavoritedAt,
	}
}
