// Package criteria models the structured search criteria extracted from a
// natural-language watch query.
package criteria

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Any marks a descriptive field the user did not constrain.
const Any = "any"

// Display keys used in analyzer output and accepted on input.
const (
	KeyType        = "Type"
	KeyDialColor   = "Dial Color"
	KeyPrice       = "Price"
	KeyStyle       = "Style"
	KeyFeatures    = "Features"
	KeyUse         = "Use"
	KeyAudience    = "Audience"
	KeyAppearance  = "Appearance"
	KeyAesthetic   = "Aesthetic"
	KeyVersatility = "Versatility"
)

// DisplayKeys lists the descriptive keys in prompt order.
var DisplayKeys = []string{
	KeyType, KeyDialColor, KeyPrice, KeyStyle, KeyFeatures,
	KeyUse, KeyAudience, KeyAppearance, KeyAesthetic, KeyVersatility,
}

// Criteria holds the descriptive fields produced by the analyzer and the
// structured column filters applied by the database search.
type Criteria struct {
	Type        *string `json:"Type"`
	DialColor   *string `json:"Dial Color"`
	Price       *string `json:"Price"`
	Style       *string `json:"Style"`
	Features    *string `json:"Features"`
	Use         *string `json:"Use"`
	Audience    *string `json:"Audience"`
	Appearance  *string `json:"Appearance"`
	Aesthetic   *string `json:"Aesthetic"`
	Versatility *string `json:"Versatility"`

	ModelName      *string          `json:"model_name,omitempty"`
	FamilyName     *string          `json:"family_name,omitempty"`
	MovementName   *string          `json:"movement_name,omitempty"`
	FunctionName   *string          `json:"function_name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	DialColorName  *string          `json:"dial_color,omitempty"`
	YearProduced   *string          `json:"year_produced,omitempty"`
	LimitedEdition *bool            `json:"limited_edition,omitempty"`
	BrandID        *int64           `json:"brand_id,omitempty"`
	PriceEURMin    *decimal.Decimal `json:"price_eur_min,omitempty"`
	PriceEURMax    *decimal.Decimal `json:"price_eur_max,omitempty"`
}

// Defaults is the answer for generic queries such as "find me a watch".
func Defaults() Criteria {
	wildcard := func() *string { v := Any; return &v }
	return Criteria{
		Type:        wildcard(),
		Style:       wildcard(),
		Use:         wildcard(),
		Audience:    wildcard(),
		Appearance:  wildcard(),
		Aesthetic:   wildcard(),
		Versatility: wildcard(),
	}
}

// IsCanned reports whether query, lowercased and trimmed, is one of phrases.
func IsCanned(query string, phrases []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return false
	}
	for _, phrase := range phrases {
		if normalized == strings.ToLower(strings.TrimSpace(phrase)) {
			return true
		}
	}
	return false
}

// Field is one descriptive key/value pair.
type Field struct {
	Key   string
	Value string
}

// Descriptive returns the set descriptive fields in DisplayKeys order.
func (c Criteria) Descriptive() []Field {
	values := []*string{
		c.Type, c.DialColor, c.Price, c.Style, c.Features,
		c.Use, c.Audience, c.Appearance, c.Aesthetic, c.Versatility,
	}
	fields := make([]Field, 0, len(values))
	for i, value := range values {
		if value == nil || strings.TrimSpace(*value) == "" {
			continue
		}
		fields = append(fields, Field{Key: DisplayKeys[i], Value: *value})
	}
	return fields
}

// Text renders the meaningful values as free text for the similarity search.
// "any" values and the price expression are left out.
func (c Criteria) Text() string {
	parts := make([]string, 0, 16)
	for _, field := range c.Descriptive() {
		if field.Key == KeyPrice || IsAny(field.Value) {
			continue
		}
		parts = append(parts, field.Value)
	}
	for _, value := range []*string{c.ModelName, c.FamilyName, c.MovementName, c.FunctionName, c.DialColorName, c.Description} {
		if Meaningful(value) {
			parts = append(parts, strings.TrimSpace(*value))
		}
	}
	return strings.Join(parts, " ")
}

// IsAny reports whether value is the "any" wildcard.
func IsAny(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), Any)
}

// Meaningful reports whether value is set, non-blank and not "any".
func Meaningful(value *string) bool {
	if value == nil {
		return false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed != "" && !IsAny(trimmed)
}
