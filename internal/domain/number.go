package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber reads a JSON number or a JSON string holding a number.
// Missing values, null and the empty string are 0.
func ParseNumber(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, err
		}
		return ParseNumberString(str)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", s)
	}
	return d.InexactFloat64(), nil
}

func ParseNumberString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return d.InexactFloat64(), nil
}

// CoerceNumber normalizes a loosely typed cell value.
func CoerceNumber(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return ParseNumberString(x.String())
	case decimal.Decimal:
		return x.InexactFloat64(), nil
	case string:
		return ParseNumberString(x)
	default:
		return 0, fmt.Errorf("unsupported numeric value %v (%T)", v, v)
	}
}
