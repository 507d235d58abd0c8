package calculator

import (
	"math"
	"rebalance/internal/domain"

	"github.com/montanaflynn/stats"
)

// Rebalance prices every holding and works out how many shares to buy
// (positive) or sell (negative) to bring it back to its target share of
// the portfolio. Target shares are pct relative to the sum of all pct, so
// they do not need to add up to 100.
//
// Holdings without a quote are priced at 0. When the portfolio has no
// value, no target, or a holding has no price, Buy is not finite; that
// is passed through untouched for the caller to render.
func Rebalance(holdings []domain.Holding, quotes []domain.PriceQuote) []domain.DisplayRow {
	priceMap := map[string]float64{}
	for _, q := range quotes {
		priceMap[q.Ticker] = q.Price
	}

	rows := make([]domain.DisplayRow, 0, len(holdings))
	values := make([]float64, 0, len(holdings))
	pcts := make([]float64, 0, len(holdings))
	for _, h := range holdings {
		price := priceMap[h.Ticker]
		row := domain.DisplayRow{
			Ticker: h.Ticker,
			Qty:    h.Qty,
			Pct:    h.Pct,
			Price:  price,
			Value:  price * h.Qty,
		}
		rows = append(rows, row)
		values = append(values, row.Value)
		pcts = append(pcts, row.Pct)
	}

	totalValue := sum(values)
	totalPct := sum(pcts)

	for i, row := range rows {
		rows[i].Buy = math.Round((row.Pct/totalPct - row.Value/totalValue) * totalValue / row.Price)
	}

	return rows
}

func sum(data []float64) float64 {
	total, err := stats.Sum(data)
	if err != nil {
		// only fails on empty input
		return 0
	}
	return total
}
