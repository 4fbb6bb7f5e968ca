package watches

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/watchengine/watch-engine-backend/internal/criteria"
)

// Op is a predicate operator supported by the filter search.
type Op string

const (
	OpILike Op = "ilike"
	OpEq    Op = "eq"
	OpGte   Op = "gte"
	OpLte   Op = "lte"
)

// Predicate is a single column condition. ILIKE values are the raw term;
// the repository wraps them in %...%.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

var filterableColumns = map[string]struct{}{
	"model_name": {}, "family_name": {}, "movement_name": {}, "function_name": {},
	"description": {}, "dial_color": {}, "year_produced": {}, "limited_edition": {},
	"brand_id": {}, "price_eur": {},
}

// PredicatesFor builds the column predicates for c. "any" and blank values
// never produce a predicate.
func PredicatesFor(c criteria.Criteria) []Predicate {
	preds := make([]Predicate, 0, 12)
	like := func(column string, value *string) {
		if criteria.Meaningful(value) {
			preds = append(preds, Predicate{Column: column, Op: OpILike, Value: strings.TrimSpace(*value)})
		}
	}

	like("model_name", c.ModelName)
	like("family_name", c.FamilyName)
	like("movement_name", c.MovementName)
	like("function_name", c.FunctionName)
	like("function_name", c.Features)
	like("description", c.Description)
	like("description", c.Type)
	like("description", c.Style)
	like("description", c.Use)
	like("dial_color", c.DialColorName)
	like("dial_color", c.DialColor)

	if criteria.Meaningful(c.YearProduced) {
		preds = append(preds, Predicate{Column: "year_produced", Op: OpEq, Value: strings.TrimSpace(*c.YearProduced)})
	}
	if c.LimitedEdition != nil {
		preds = append(preds, Predicate{Column: "limited_edition", Op: OpEq, Value: *c.LimitedEdition})
	}
	if c.BrandID != nil {
		preds = append(preds, Predicate{Column: "brand_id", Op: OpEq, Value: *c.BrandID})
	}
	if c.PriceEURMin != nil {
		preds = append(preds, Predicate{Column: "price_eur", Op: OpGte, Value: decimalArg(*c.PriceEURMin)})
	}
	if c.PriceEURMax != nil {
		preds = append(preds, Predicate{Column: "price_eur", Op: OpLte, Value: decimalArg(*c.PriceEURMax)})
	}
	return preds
}

func decimalArg(d decimal.Decimal) string {
	return d.String()
}

// clause renders the predicate as a gorm where fragment and its argument.
func (p Predicate) clause() (string, any, bool) {
	if _, ok := filterableColumns[p.Column]; !ok {
		return "", nil, false
	}
	switch p.Op {
	case OpILike:
		return p.Column + " ILIKE ?", "%" + escapeLike(toString(p.Value)) + "%", true
	case OpEq:
		return p.Column + " = ?", p.Value, true
	case OpGte:
		return p.Column + " >= ?", p.Value, true
	case OpLte:
		return p.Column + " <= ?", p.Value, true
	default:
		return "", nil, false
	}
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
