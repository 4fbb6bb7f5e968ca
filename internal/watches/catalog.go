package watches

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/watchengine/watch-engine-backend/pkg/db/models"
	"github.com/watchengine/watch-engine-backend/pkg/watchdb"
)

// DialColorFromModelName returns the trimmed last "/" segment of a catalog
// model name, e.g. "Seamaster 300 / Blue" gives "Blue".
func DialColorFromModelName(modelName string) *string {
	parts := strings.Split(modelName, "/")
	color := strings.TrimSpace(parts[len(parts)-1])
	if color == "" {
		return nil
	}
	return &color
}

// EmbeddingText is the text embedded for a catalog row.
func EmbeddingText(w watchdb.Watch) string {
	return strings.TrimSpace(strings.Join([]string{w.ModelName, w.FamilyName, w.MovementName}, " "))
}

// IsLimited reads the catalog's free-text limited flag.
func IsLimited(limitedName string) bool {
	value := strings.ToLower(strings.TrimSpace(limitedName))
	return value != "" && value != "no"
}

// ModelFromCatalog maps a catalog row onto a watches row. ok is false for
// rows without a model name.
func ModelFromCatalog(w watchdb.Watch, brandID int64) (models.Watch, bool) {
	modelName := strings.TrimSpace(w.ModelName)
	if modelName == "" {
		return models.Watch{}, false
	}
	row := models.Watch{
		ExternalID:     optional(w.WatchID.String()),
		Reference:      optional(w.Reference),
		ModelName:      modelName,
		FamilyName:     optional(w.FamilyName),
		MovementName:   optional(w.MovementName),
		FunctionName:   optional(w.FunctionName),
		YearProduced:   optional(w.YearProducedName.String()),
		LimitedEdition: IsLimited(w.LimitedName),
		ImageURL:       optional(w.URL),
		ImageFilename:  optional(w.WatchImageName),
		Description:    optional(w.DescriptionContent),
		DialColor:      DialColorFromModelName(modelName),
		RawData:        w.Raw,
		Source:         models.WatchSourceCatalog,
	}
	if brandID > 0 {
		id := brandID
		row.BrandID = &id
	}
	if price := parsePrice(w.PriceInEuro.String()); price != nil {
		row.PriceEUR = decimal.NewNullDecimal(*price)
	}
	return row, true
}

// FromCatalog maps a catalog or model-suggested row onto the common DTO.
func FromCatalog(w watchdb.Watch, source string) WatchDTO {
	modelName := strings.TrimSpace(w.ModelName)
	return WatchDTO{
		ExternalID:     optional(w.WatchID.String()),
		Reference:      optional(w.Reference),
		MakeName:       optional(w.MakeName),
		ModelName:      modelName,
		FamilyName:     optional(w.FamilyName),
		MovementName:   optional(w.MovementName),
		FunctionName:   optional(w.FunctionName),
		YearProduced:   optional(w.YearProducedName.String()),
		LimitedEdition: IsLimited(w.LimitedName),
		PriceEUR:       parsePrice(w.PriceInEuro.String()),
		ImageURL:       optional(w.URL),
		ImageFilename:  optional(w.WatchImageName),
		Description:    optional(w.DescriptionContent),
		DialColor:      DialColorFromModelName(modelName),
		Source:         source,
	}
}

func parsePrice(raw string) *decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return nil
	}
	price, err := decimal.NewFromString(cleaned)
	if err != nil || price.IsZero() || price.IsNegative() {
		return nil
	}
	return &price
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
