package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/shopspring/decimal"
)

// WatchSourceCatalog tags rows imported from the RapidAPI watch database.
const WatchSourceCatalog = "Watch Database API"

type Watch struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalID     *string             `gorm:"column:external_id;uniqueIndex:watches_source_external_id_key"`
	Reference      *string             `gorm:"column:reference"`
	BrandID        *int64              `gorm:"column:brand_id;index"`
	ModelName      string              `gorm:"column:model_name;not null"`
	FamilyName     *string             `gorm:"column:family_name"`
	MovementName   *string             `gorm:"column:movement_name"`
	FunctionName   *string             `gorm:"column:function_name"`
	YearProduced   *string             `gorm:"column:year_produced"`
	LimitedEdition bool                `gorm:"column:limited_edition;not null;default:false"`
	PriceEUR       decimal.NullDecimal `gorm:"column:price_eur;type:numeric(12,2)"`
	ImageURL       *string             `gorm:"column:image_url"`
	ImageFilename  *string             `gorm:"column:image_filename"`
	Description    *string             `gorm:"column:description"`
	DialColor      *string             `gorm:"column:dial_color"`
	RawData        json.RawMessage     `gorm:"column:raw_data;type:jsonb"`
	Source         string              `gorm:"column:source;not null;uniqueIndex:watches_source_external_id_key"`
	Embedding      *pgvector.Vector    `gorm:"column:embedding;type:vector(512)"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	LastUpdated    time.Time           `gorm:"column:last_updated;autoUpdateTime"`
}
