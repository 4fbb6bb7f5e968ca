package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// WatchPreference is the per-user profile keyed by user_id.
type WatchPreference struct {
	UserID                 uuid.UUID           `gorm:"column:user_id;type:uuid;primaryKey"`
	Name                   *string             `gorm:"column:name"`
	Bio                    *string             `gorm:"column:bio"`
	ProfileImage           *string             `gorm:"column:profile_image"`
	PreferredBrands        pq.StringArray      `gorm:"column:preferred_brands;type:text[]"`
	PriceRangeMin          decimal.NullDecimal `gorm:"column:price_range_min;type:numeric(12,2)"`
	PriceRangeMax          decimal.NullDecimal `gorm:"column:price_range_max;type:numeric(12,2)"`
	PreferredStyles        pq.StringArray      `gorm:"column:preferred_styles;type:text[]"`
	PreferredFeatures      pq.StringArray      `gorm:"column:preferred_features;type:text[]"`
	PreferredMaterials     pq.StringArray      `gorm:"column:preferred_materials;type:text[]"`
	PreferredComplications pq.StringArray      `gorm:"column:preferred_complications;type:text[]"`
	DialColors             pq.StringArray      `gorm:"column:dial_colors;type:text[]"`
	CaseSizes              pq.Float64Array     `gorm:"column:case_sizes;type:numeric[]"`
	CreatedAt              time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
