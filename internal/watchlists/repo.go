package watchlists

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
)

// Repository persists watch lists and their items.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, list *models.WatchList) error {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	return r.DB(ctx).Create(list).Error
}

// FindOwned loads a list only when it belongs to userID.
func (r *Repository) FindOwned(ctx context.Context, userID, listID uuid.UUID) (*models.WatchList, error) {
	var list models.WatchList
	if err := r.DB(ctx).
		Where("id = ? AND user_id = ?", listID, userID).
		First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

// ListForUser returns the user's lists, newest first, with item counts.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]ListDTO, error) {
	var rows []struct {
		ID        uuid.UUID `gorm:"column:id"`
		Name      string    `gorm:"column:name"`
		ItemCount int       `gorm:"column:item_count"`
		CreatedAt time.Time `gorm:"column:created_at"`
	}
	if err := r.DB(ctx).
		Table("watch_lists l").
		Select("l.id, l.name, l.created_at, COUNT(i.id) AS item_count").
		Joins("LEFT JOIN watch_list_items i ON i.list_id = l.id").
		Where("l.user_id = ?", userID).
		Group("l.id, l.name, l.created_at").
		Order("l.created_at DESC").
		Order("l.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ListDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ListDTO{ID: row.ID, Name: row.Name, ItemCount: row.ItemCount, CreatedAt: row.CreatedAt})
	}
	return out, nil
}

func (r *Repository) CountItems(ctx context.Context, listID uuid.UUID) (int, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.WatchListItem{}).Where("list_id = ?", listID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *Repository) Rename(ctx context.Context, listID uuid.UUID, name string) error {
	return r.DB(ctx).
		Model(&models.WatchList{}).
		Where("id = ?", listID).
		Update("name", name).Error
}

// Delete removes the list and its items in one transaction.
func (r *Repository) Delete(ctx context.Context, listID uuid.UUID) error {
	return r.InTx(ctx, func(ctx context.Context) error {
		if err := r.DB(ctx).Where("list_id = ?", listID).Delete(&models.WatchListItem{}).Error; err != nil {
			return err
		}
		return r.DB(ctx).Where("id = ?", listID).Delete(&models.WatchList{}).Error
	})
}

// AddItem inserts the watch into the list and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, listID, watchID uuid.UUID, at time.Time) error {
	return r.DB(ctx).Exec(
		`INSERT INTO watch_list_items (id, list_id, watch_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (list_id, watch_id) DO NOTHING`,
		uuid.New(), listID, watchID, at.UTC(),
	).Error
}

func (r *Repository) RemoveItem(ctx context.Context, listID, watchID uuid.UUID) error {
	return r.DB(ctx).
		Where("list_id = ? AND watch_id = ?", listID, watchID).
		Delete(&models.WatchListItem{}).Error
}

// Items returns the list's watches, most recently added first.
func (r *Repository) Items(ctx context.Context, listID uuid.UUID) ([]ItemDTO, error) {
	selectColumns := []string{
		"i.id AS item_id",
		"i.created_at AS added_at",
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
		"w.description",
		"w.dial_color",
		"w.source",
	}

	var records []itemRecord
	if err := r.DB(ctx).
		Table("watch_list_items i").
		Select(strings.Join(selectColumns, ", ")).
		Joins("JOIN watches w ON w.id = i.watch_id").
		Where("i.list_id = ?", listID).
		Order("i.created_at DESC").
		Order("i.id DESC").
		Scan(&records).Error; err != nil {
		return nil, err
	}

	out := make([]ItemDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDTO())
	}
	return out, nil
}

type itemRecord struct {
	ItemID         uuid.UUID           `gorm:"column:item_id"`
	AddedAt        time.Time           `gorm:"column:added_at"`
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
	Description    *string             `gorm:"column:description"`
	DialColor      *string             `gorm:"column:dial_color"`
	Source         string              `gorm:"column:source"`
}

func (r itemRecord) toDTO() ItemDTO {
	dto := watches.FromModel(&models.Watch{
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
		Description:    r.Description,
		DialColor:      r.DialColor,
		Source:         r.Source,
	})
	dto.CreatedAt = nil
	dto.LastUpdated = nil
	return ItemDTO{ID: r.ItemID, Watch: dto, AddedAt: r.AddedAt}
}
