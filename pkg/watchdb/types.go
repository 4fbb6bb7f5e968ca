package watchdb

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexString accepts either a JSON string or a JSON number. The catalog is not
// consistent about which one it sends for ids and prices.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

type Make struct {
	MakeID   FlexString `json:"makeId"`
	MakeName string     `json:"makeName"`
}

// Watch is one catalog row. Raw keeps the exact JSON for the raw_data column.
type Watch struct {
	WatchID            FlexString      `json:"watchId"`
	MakeName           string          `json:"makeName"`
	ModelName          string          `json:"modelName"`
	FamilyName         string          `json:"familyName"`
	MovementName       string          `json:"movementName"`
	FunctionName       string          `json:"functionName"`
	YearProducedName   FlexString      `json:"yearProducedName"`
	LimitedName        string          `json:"limitedName"`
	PriceInEuro        FlexString      `json:"priceInEuro"`
	URL                string          `json:"url"`
	WatchImageName     string          `json:"watchImageName"`
	DescriptionContent string          `json:"descriptionContent"`
	Reference          string          `json:"reference"`
	Raw                json.RawMessage `json:"-"`
}

type WatchPage struct {
	Page       int
	TotalPages int
	Watches    []Watch
}
