package domain

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// DisplayRow is a holding with its live price and computed rebalance
// figures. It is derived on every render and never stored.
type DisplayRow struct {
	Ticker string
	Qty    float64
	Pct    float64
	Price  float64
	Value  float64
	Buy    float64
}

func (d DisplayRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"ticker": d.Ticker,
		"qty":    jsonNumber(d.Qty),
		"pct":    jsonNumber(d.Pct),
		"price":  jsonNumber(d.Price),
		"value":  jsonNumber(d.Value),
		"buy":    jsonNumber(d.Buy),
	})
}

// encoding/json refuses NaN and Inf, so non-finite values go out as
// strings instead of failing the whole response
func jsonNumber(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}

func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(f).String()
}
