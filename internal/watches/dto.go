package watches

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/watchengine/watch-engine-backend/pkg/db/models"
)

// WatchDTO is the common watch shape returned by every search source and
// by the catalog read endpoints. Rows that do not come from the database
// leave ID empty and carry the catalog id in ExternalID.
type WatchDTO struct {
	ID              *uuid.UUID       `json:"id,omitempty"`
	ExternalID      *string          `json:"external_id,omitempty"`
	Reference       *string          `json:"reference,omitempty"`
	BrandID         *int64           `json:"brand_id,omitempty"`
	MakeName        *string          `json:"make_name,omitempty"`
	ModelName       string           `json:"model_name"`
	FamilyName      *string          `json:"family_name"`
	MovementName    *string          `json:"movement_name"`
	FunctionName    *string          `json:"function_name"`
	YearProduced    *string          `json:"year_produced"`
	LimitedEdition  bool             `json:"limited_edition"`
	PriceEUR        *decimal.Decimal `json:"price_eur"`
	ImageURL        *string          `json:"image_url"`
	ImageFilename   *string          `json:"image_filename,omitempty"`
	Description     *string          `json:"description"`
	DialColor       *string          `json:"dial_color"`
	Source          string           `json:"source,omitempty"`
	SimilarityScore *float64         `json:"similarity_score,omitempty"`
	CreatedAt       *time.Time       `json:"created_at,omitempty"`
	LastUpdated     *time.Time       `json:"last_updated,omitempty"`
}

// FromModel maps a stored row onto the transport shape.
func FromModel(w *models.Watch) WatchDTO {
	id := w.ID
	createdAt := w.CreatedAt
	lastUpdated := w.LastUpdated
	return WatchDTO{
		ID:             &id,
		ExternalID:     w.ExternalID,
		Reference:      w.Reference,
		BrandID:        w.BrandID,
		ModelName:      w.ModelName,
		FamilyName:     w.FamilyName,
		MovementName:   w.MovementName,
		FunctionName:   w.FunctionName,
		YearProduced:   w.YearProduced,
		LimitedEdition: w.LimitedEdition,
		PriceEUR:       nullDecimalPtr(w.PriceEUR),
		ImageURL:       w.ImageURL,
		ImageFilename:  w.ImageFilename,
		Description:    w.Description,
		DialColor:      w.DialColor,
		Source:         w.Source,
		CreatedAt:      &createdAt,
		LastUpdated:    &lastUpdated,
	}
}

// FromModels maps a slice of rows, never returning nil.
func FromModels(rows []models.Watch) []WatchDTO {
	out := make([]WatchDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

// SimilarityRow is one row of search_watches_by_similarity.
type SimilarityRow struct {
	ID              uuid.UUID           `gorm:"column:id"`
	ExternalID      *string             `gorm:"column:external_id"`
	Reference       *string             `gorm:"column:reference"`
	BrandID         *int64              `gorm:"column:brand_id"`
	ModelName       string              `gorm:"column:model_name"`
	FamilyName      *string             `gorm:"column:family_name"`
	MovementName    *string             `gorm:"column:movement_name"`
	FunctionName    *string             `gorm:"column:function_name"`
	YearProduced    *string             `gorm:"column:year_produced"`
	LimitedEdition  bool                `gorm:"column:limited_edition"`
	PriceEUR        decimal.NullDecimal `gorm:"column:price_eur"`
	ImageURL        *string             `gorm:"column:image_url"`
	ImageFilename   *string             `gorm:"column:image_filename"`
	Description     *string             `gorm:"column:description"`
	DialColor       *string             `gorm:"column:dial_color"`
	Source          string              `gorm:"column:source"`
	CreatedAt       time.Time           `gorm:"column:created_at"`
	LastUpdated     time.Time           `gorm:"column:last_updated"`
	SimilarityScore float64             `gorm:"column:similarity_score"`
}

func (r SimilarityRow) ToDTO() WatchDTO {
	dto := FromModel(&models.Watch{
		ID:             r.ID,
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
		CreatedAt:      r.CreatedAt,
		LastUpdated:    r.LastUpdated,
	})
	score := r.SimilarityScore
	dto.SimilarityScore = &score
	return dto
}

func nullDecimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	v := value.Decimal
	return &v
}
