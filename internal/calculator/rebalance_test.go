package calculator

import (
	"encoding/json"
	"math"
	"rebalance/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestRebalance(t *testing.T) {
	t.Run("single holding at target", func(t *testing.T) {
		rows := Rebalance(
			[]domain.Holding{{Ticker: "A", Qty: 7, Pct: 2}},
			[]domain.PriceQuote{{Ticker: "A", Price: 3}},
		)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.DisplayRow{{Ticker: "A", Qty: 7, Pct: 2, Price: 3, Value: 21, Buy: 0}},
				rows,
			),
		)
	})

	t.Run("two holdings, one fully owned target", func(t *testing.T) {
		rows := Rebalance(
			[]domain.Holding{
				{Ticker: "A", Qty: 7, Pct: 100},
				{Ticker: "B", Qty: 22, Pct: 0},
			},
			[]domain.PriceQuote{
				{Ticker: "A", Price: 11},
				{Ticker: "B", Price: 7},
			},
		)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.DisplayRow{
					{Ticker: "A", Qty: 7, Pct: 100, Price: 11, Value: 77, Buy: 14},
					{Ticker: "B", Qty: 22, Pct: 0, Price: 7, Value: 154, Buy: -22},
				},
				rows,
			),
		)
	})

	t.Run("numeric strings match numbers", func(t *testing.T) {
		fromStrings := []domain.Holding{}
		err := json.Unmarshal([]byte(`[{"ticker":"VTI","qty":"200","pct":"50"},{"ticker":"BND","qty":"100","pct":"50"}]`), &fromStrings)
		require.NoError(t, err)
		fromNumbers := []domain.Holding{
			{Ticker: "VTI", Qty: 200, Pct: 50},
			{Ticker: "BND", Qty: 100, Pct: 50},
		}
		quotes := []domain.PriceQuote{
			{Ticker: "VTI", Price: 250.5},
			{Ticker: "BND", Price: 72.1},
		}

		require.Equal(t, "", cmp.Diff(Rebalance(fromNumbers, quotes), Rebalance(fromStrings, quotes)))
	})

	t.Run("is pure", func(t *testing.T) {
		holdings := []domain.Holding{
			{Ticker: "A", Qty: 3, Pct: 60},
			{Ticker: "B", Qty: 10, Pct: 40},
		}
		quotes := []domain.PriceQuote{
			{Ticker: "A", Price: 100},
			{Ticker: "B", Price: 20},
		}
		first := Rebalance(holdings, quotes)
		second := Rebalance(holdings, quotes)
		require.Equal(t, "", cmp.Diff(first, second))
		require.Equal(t, []domain.Holding{
			{Ticker: "A", Qty: 3, Pct: 60},
			{Ticker: "B", Qty: 10, Pct: 40},
		}, holdings)
	})

	t.Run("latest quote for a ticker wins", func(t *testing.T) {
		rows := Rebalance(
			[]domain.Holding{
				{Ticker: "A", Qty: 1, Pct: 50},
				{Ticker: "A", Qty: 1, Pct: 50},
			},
			[]domain.PriceQuote{
				{Ticker: "A", Price: 5},
				{Ticker: "A", Price: 10},
			},
		)
		require.Equal(t, float64(10), rows[0].Price)
		require.Equal(t, float64(10), rows[1].Price)
		require.Equal(t, float64(0), rows[0].Buy)
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		// target 50% of 20 = 10 => A short by 2.5 shares at price 2
		rows := Rebalance(
			[]domain.Holding{
				{Ticker: "A", Qty: 2.5, Pct: 50},
				{Ticker: "B", Qty: 15, Pct: 50},
			},
			[]domain.PriceQuote{
				{Ticker: "A", Price: 2},
				{Ticker: "B", Price: 1},
			},
		)
		require.Equal(t, float64(3), rows[0].Buy)
		require.Equal(t, float64(-5), rows[1].Buy)
	})

	t.Run("empty portfolio", func(t *testing.T) {
		rows := Rebalance(nil, nil)
		require.Empty(t, rows)
	})
}

// Known defect, reproduced on purpose: divisions by zero are not guarded
// and produce non-finite buy values.
func TestRebalance_nonFinite(t *testing.T) {
	t.Run("missing price", func(t *testing.T) {
		rows := Rebalance(
			[]domain.Holding{
				{Ticker: "A", Qty: 7, Pct: 50},
				{Ticker: "B", Qty: 3, Pct: 50},
			},
			[]domain.PriceQuote{{Ticker: "A", Price: 10}},
		)
		require.Equal(t, float64(0), rows[1].Price)
		require.Equal(t, float64(0), rows[1].Value)
		require.False(t, isFinite(rows[1].Buy))
		require.True(t, isFinite(rows[0].Buy))
	})

	t.Run("zero total pct", func(t *testing.T) {
		rows := Rebalance(
			[]domain.Holding{{Ticker: "A", Qty: 7, Pct: 0}},
			[]domain.PriceQuote{{Ticker: "A", Price: 10}},
		)
		require.False(t, isFinite(rows[0].Buy))
	})

	t.Run("zero total value", func(t *testing.T) {
		rows := Rebalance(
			[]domain.Holding{{Ticker: "A", Qty: 0, Pct: 100}},
			[]domain.PriceQuote{{Ticker: "A", Price: 10}},
		)
		require.True(t, math.IsNaN(rows[0].Buy))
	})

	t.Run("no prices at all", func(t *testing.T) {
		rows := Rebalance([]domain.Holding{{Ticker: "A", Qty: 7, Pct: 100}}, nil)
		require.Equal(
			t,
			"",
			cmp.Diff(
				[]domain.DisplayRow{{Ticker: "A", Qty: 7, Pct: 100}},
				rows,
				cmpopts.IgnoreFields(domain.DisplayRow{}, "Buy"),
			),
		)
		require.True(t, math.IsNaN(rows[0].Buy))
	})
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
