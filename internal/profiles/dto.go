package profiles

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/watchengine/watch-engine-backend/pkg/db/models"
)

// ProfileDTO is the watch_preferences row as served to the owner.
type ProfileDTO struct {
	UserID                 uuid.UUID        `json:"user_id"`
	Name                   *string          `json:"name"`
	Bio                    *string          `json:"bio"`
	ProfileImage           *string          `json:"profile_image"`
	PreferredBrands        []string         `json:"preferred_brands"`
	PriceRangeMin          *decimal.Decimal `json:"price_range_min"`
	PriceRangeMax          *decimal.Decimal `json:"price_range_max"`
	PreferredStyles        []string         `json:"preferred_styles"`
	PreferredFeatures      []string         `json:"preferred_features"`
	PreferredMaterials     []string         `json:"preferred_materials"`
	PreferredComplications []string         `json:"preferred_complications"`
	DialColors             []string         `json:"dial_colors"`
	CaseSizes              []float64        `json:"case_sizes"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// UpsertProfileInput is the editable part of a profile.
type UpsertProfileInput struct {
	Name                   *string          `json:"name" validate:"omitempty,max=100"`
	Bio                    *string          `json:"bio" validate:"omitempty,max=1000"`
	PreferredBrands        []string         `json:"preferred_brands" validate:"omitempty,max=50,dive,max=100"`
	PriceRangeMin          *decimal.Decimal `json:"price_range_min"`
	PriceRangeMax          *decimal.Decimal `json:"price_range_max"`
	PreferredStyles        []string         `json:"preferred_styles" validate:"omitempty,max=50,dive,max=100"`
	PreferredFeatures      []string         `json:"preferred_features" validate:"omitempty,max=50,dive,max=100"`
	PreferredMaterials     []string         `json:"preferred_materials" validate:"omitempty,max=50,dive,max=100"`
	PreferredComplications []string         `json:"preferred_complications" validate:"omitempty,max=50,dive,max=100"`
	DialColors             []string         `json:"dial_colors" validate:"omitempty,max=50,dive,max=100"`
	CaseSizes              []float64        `json:"case_sizes" validate:"omitempty,max=20,dive,gt=0,lt=100"`
}

func FromModel(p *models.WatchPreference) ProfileDTO {
	return ProfileDTO{
		UserID:                 p.UserID,
		Name:                   p.Name,
		Bio:                    p.Bio,
		ProfileImage:           p.ProfileImage,
		PreferredBrands:        stringsOrEmpty(p.PreferredBrands),
		PriceRangeMin:          nullDecimalPtr(p.PriceRangeMin),
		PriceRangeMax:          nullDecimalPtr(p.PriceRangeMax),
		PreferredStyles:        stringsOrEmpty(p.PreferredStyles),
		PreferredFeatures:      stringsOrEmpty(p.PreferredFeatures),
		PreferredMaterials:     stringsOrEmpty(p.PreferredMaterials),
		PreferredComplications: stringsOrEmpty(p.PreferredComplications),
		DialColors:             stringsOrEmpty(p.DialColors),
		CaseSizes:              floatsOrEmpty(p.CaseSizes),
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

// toModel applies the normalized input onto a row for userID.
func (in UpsertProfileInput) toModel(userID uuid.UUID) *models.WatchPreference {
	row := &models.WatchPreference{
		UserID:                 userID,
		Name:                   trimmedOrNil(in.Name),
		Bio:                    trimmedOrNil(in.Bio),
		PreferredBrands:        pq.StringArray(cleanList(in.PreferredBrands)),
		PreferredStyles:        pq.StringArray(cleanList(in.PreferredStyles)),
		PreferredFeatures:      pq.StringArray(cleanList(in.PreferredFeatures)),
		PreferredMaterials:     pq.StringArray(cleanList(in.PreferredMaterials)),
		PreferredComplications: pq.StringArray(cleanList(in.PreferredComplications)),
		DialColors:             pq.StringArray(cleanList(in.DialColors)),
		CaseSizes:              pq.Float64Array(cleanSizes(in.CaseSizes)),
	}
	if in.PriceRangeMin != nil {
		row.PriceRangeMin = decimal.NewNullDecimal(*in.PriceRangeMin)
	}
	if in.PriceRangeMax != nil {
		row.PriceRangeMax = decimal.NewNullDecimal(*in.PriceRangeMax)
	}
	return row
}

// cleanList trims entries, drops blanks and removes case-insensitive duplicates
// while keeping the first spelling.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func cleanSizes(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	seen := make(map[float64]struct{}, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringsOrEmpty(values pq.StringArray) []string {
	if values == nil {
		return []string{}
	}
	return []string(values)
}

func floatsOrEmpty(values pq.Float64Array) []float64 {
	if values == nil {
		return []float64{}
	}
	return []float64(values)
}

func nullDecimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	v := value.Decimal
	return &v
}
