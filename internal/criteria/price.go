package criteria

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	amountPattern = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([kKmM])?\b`)
	upperWords    = []string{"under", "below", "less than", "up to", "max", "at most", "no more than", "cheaper than", "within"}
	lowerWords    = []string{"over", "above", "more than", "at least", "min", "from", "starting", "upwards of", "plus", "+"}
)

// ParsePriceRange turns expressions like "under $5000", "over 2,000",
// "between 1000 and 5000" or "$3k-$6k" into an inclusive EUR range. A bare
// amount is read as a budget ceiling.
func ParsePriceRange(expr string) (min, max *decimal.Decimal) {
	text := strings.ToLower(strings.TrimSpace(expr))
	if text == "" || IsAny(text) {
		return nil, nil
	}

	matches := amountPattern.FindAllStringSubmatchIndex(text, -1)
	amounts := make([]decimal.Decimal, 0, len(matches))
	for _, m := range matches {
		if amount := toAmount(text[m[2]:m[3]], suffix(text, m)); amount != nil {
			amounts = append(amounts, *amount)
		}
	}

	switch {
	case len(amounts) == 0:
		return nil, nil
	case len(amounts) >= 2:
		low, high := amounts[0], amounts[1]
		if low.GreaterThan(high) {
			low, high = high, low
		}
		return &low, &high
	}

	amount := amounts[0]
	before := text[:matches[0][0]]
	after := text[matches[0][1]:]
	switch {
	case containsAny(before, upperWords):
		return nil, &amount
	case containsAny(before, lowerWords) || strings.HasPrefix(strings.TrimSpace(after), "+"):
		return &amount, nil
	default:
		return nil, &amount
	}
}

func parseAmount(value string) *decimal.Decimal {
	m := amountPattern.FindStringSubmatchIndex(strings.ToLower(value))
	if m == nil {
		return nil
	}
	lowered := strings.ToLower(value)
	return toAmount(lowered[m[2]:m[3]], suffix(lowered, m))
}

func suffix(text string, m []int) string {
	if m[4] < 0 {
		return ""
	}
	return text[m[4]:m[5]]
}

func toAmount(digits, unit string) *decimal.Decimal {
	amount, err := decimal.NewFromString(strings.ReplaceAll(digits, ",", ""))
	if err != nil {
		return nil
	}
	switch strings.ToLower(unit) {
	case "k":
		amount = amount.Mul(decimal.NewFromInt(1_000))
	case "m":
		amount = amount.Mul(decimal.NewFromInt(1_000_000))
	}
	return &amount
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
