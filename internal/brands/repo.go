package brands

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/watchengine/watch-engine-backend/internal/repo"
	"github.com/watchengine/watch-engine-backend/pkg/db/models"
)

type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns every brand ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Brand, error) {
	var rows []models.Brand
	if err := r.DB(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Brand, error) {
	var brand models.Brand
	if err := r.DB(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// IDs returns every brand id in ascending order.
func (r *Repository) IDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.DB(ctx).Model(&models.Brand{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Upsert writes the brands in one batch, refreshing names on id conflicts.
func (r *Repository) Upsert(ctx context.Context, rows []models.Brand) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
