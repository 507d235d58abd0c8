package domain

import (
	"encoding/json"
	"fmt"
)

// Holding is one line of a portfolio. Qty and Pct are always numeric once
// ingested, regardless of whether they arrived as numbers or numeric strings.
type Holding struct {
	Ticker string  `json:"ticker" csv:"ticker" dynamodbav:"ticker"`
	Qty    float64 `json:"qty" csv:"qty" dynamodbav:"qty"`
	Pct    float64 `json:"pct" csv:"pct" dynamodbav:"pct"`
}

func (h *Holding) UnmarshalJSON(b []byte) error {
	var raw struct {
		Ticker json.RawMessage `json:"ticker"`
		Qty    json.RawMessage `json:"qty"`
		Pct    json.RawMessage `json:"pct"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	ticker, err := parseTicker(raw.Ticker)
	if err != nil {
		return err
	}
	qty, err := ParseNumber(raw.Qty)
	if err != nil {
		return fmt.Errorf("invalid qty for %q: %w", ticker, err)
	}
	pct, err := ParseNumber(raw.Pct)
	if err != nil {
		return fmt.Errorf("invalid pct for %q: %w", ticker, err)
	}

	*h = Holding{
		Ticker: ticker,
		Qty:    qty,
		Pct:    pct,
	}
	return nil
}

func parseTicker(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	// tickers typed into a numeric-looking cell can arrive unquoted
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid ticker %s", string(raw))
	}
	return n.String(), nil
}

// Portfolio is an ordered list of holdings. It is always stored and
// replaced as a whole.
type Portfolio []Holding

func (p Portfolio) Tickers() []string {
	out := make([]string, 0, len(p))
	for _, h := range p {
		out = append(out, h.Ticker)
	}
	return out
}

func (p Portfolio) Copy() Portfolio {
	if p == nil {
		return nil
	}
	out := make(Portfolio, len(p))
	copy(out, p)
	return out
}
