package criteria

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnparseable is returned when no JSON object can be recovered from a model answer.
var ErrUnparseable = errors.New("criteria: no JSON object found")

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

type setter func(c *Criteria, value any)

// Keys are matched case-insensitively. Display keys and the camelCase
// aliases point at the same descriptive field.
var setters = map[string]setter{
	"type":        textSetter(func(c *Criteria) **string { return &c.Type }),
	"dial color":  textSetter(func(c *Criteria) **string { return &c.DialColor }),
	"dialcolor":   textSetter(func(c *Criteria) **string { return &c.DialColor }),
	"price":       textSetter(func(c *Criteria) **string { return &c.Price }),
	"price range": textSetter(func(c *Criteria) **string { return &c.Price }),
	"style":       textSetter(func(c *Criteria) **string { return &c.Style }),
	"features":    textSetter(func(c *Criteria) **string { return &c.Features }),
	"use":         textSetter(func(c *Criteria) **string { return &c.Use }),
	"audience":    textSetter(func(c *Criteria) **string { return &c.Audience }),
	"appearance":  textSetter(func(c *Criteria) **string { return &c.Appearance }),
	"aesthetic":   textSetter(func(c *Criteria) **string { return &c.Aesthetic }),
	"versatility": textSetter(func(c *Criteria) **string { return &c.Versatility }),

	"model_name":      textSetter(func(c *Criteria) **string { return &c.ModelName }),
	"modelname":       textSetter(func(c *Criteria) **string { return &c.ModelName }),
	"family_name":     textSetter(func(c *Criteria) **string { return &c.FamilyName }),
	"familyname":      textSetter(func(c *Criteria) **string { return &c.FamilyName }),
	"movement_name":   textSetter(func(c *Criteria) **string { return &c.MovementName }),
	"movementname":    textSetter(func(c *Criteria) **string { return &c.MovementName }),
	"function_name":   textSetter(func(c *Criteria) **string { return &c.FunctionName }),
	"functionname":    textSetter(func(c *Criteria) **string { return &c.FunctionName }),
	"description":     textSetter(func(c *Criteria) **string { return &c.Description }),
	"dial_color":      textSetter(func(c *Criteria) **string { return &c.DialColorName }),
	"year_produced":   textSetter(func(c *Criteria) **string { return &c.YearProduced }),
	"yearproduced":    textSetter(func(c *Criteria) **string { return &c.YearProduced }),
	"limited_edition": setLimitedEdition,
	"limitededition":  setLimitedEdition,
	"brand_id":        setBrandID,
	"brandid":         setBrandID,
	"price_eur_min":   decimalSetter(func(c *Criteria) **decimal.Decimal { return &c.PriceEURMin }),
	"priceeurmin":     decimalSetter(func(c *Criteria) **decimal.Decimal { return &c.PriceEURMin }),
	"price_eur_max":   decimalSetter(func(c *Criteria) **decimal.Decimal { return &c.PriceEURMax }),
	"priceeurmax":     decimalSetter(func(c *Criteria) **decimal.Decimal { return &c.PriceEURMax }),
}

// UnmarshalJSON accepts display, camelCase and snake_case keys. Values that
// cannot be converted are dropped rather than failing the whole document.
func (c *Criteria) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("criteria: expected a JSON object")
	}

	var out Criteria
	for key, value := range raw {
		set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		set(&out, value)
	}
	out.resolvePrice()
	*c = out
	return nil
}

// Parse decodes a model answer, salvaging the outermost {...} block when the
// answer carries text around the JSON.
func Parse(content string) (Criteria, error) {
	var c Criteria
	if err := json.Unmarshal([]byte(content), &c); err == nil {
		return c, nil
	}
	block := jsonObjectPattern.FindString(content)
	if block == "" {
		return Criteria{}, ErrUnparseable
	}
	if err := json.Unmarshal([]byte(block), &c); err != nil {
		return Criteria{}, ErrUnparseable
	}
	return c, nil
}

func (c *Criteria) resolvePrice() {
	if c.Price == nil || c.PriceEURMin != nil || c.PriceEURMax != nil {
		return
	}
	c.PriceEURMin, c.PriceEURMax = ParsePriceRange(*c.Price)
}

func textSetter(field func(*Criteria) **string) setter {
	return func(c *Criteria, value any) {
		if text, ok := textValue(value); ok {
			*field(c) = &text
		}
	}
}

func decimalSetter(field func(*Criteria) **decimal.Decimal) setter {
	return func(c *Criteria, value any) {
		var amount *decimal.Decimal
		switch v := value.(type) {
		case json.Number:
			if d, err := decimal.NewFromString(v.String()); err == nil {
				amount = &d
			}
		case string:
			amount = parseAmount(v)
		}
		if amount != nil && !amount.IsNegative() {
			*field(c) = amount
		}
	}
}

func setLimitedEdition(c *Criteria, value any) {
	var flag bool
	switch v := value.(type) {
	case bool:
		flag = v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes":
			flag = true
		case "false", "no":
			flag = false
		default:
			return
		}
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return
		}
		flag = n != 0
	default:
		return
	}
	c.LimitedEdition = &flag
}

func setBrandID(c *Criteria, value any) {
	var id int64
	var err error
	switch v := value.(type) {
	case json.Number:
		id, err = v.Int64()
	case string:
		id, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return
	}
	if err != nil || id <= 0 {
		return
	}
	c.BrandID = &id
}

func textValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed, trimmed != ""
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if text, ok := textValue(item); ok {
				parts = append(parts, text)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, ", "), true
	default:
		return "", false
	}
}
