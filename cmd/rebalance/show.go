package main

import (
	"fmt"
	"rebalance/internal/calculator"
	"rebalance/internal/domain"
	"rebalance/internal/logger"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the portfolio with prices and buy/sell amounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			gateway, err := opts.gateway(ctx)
			if err != nil {
				return err
			}

			holdings, err := gateway.GetPortfolio(ctx)
			if err != nil {
				return err
			}

			quotes := []domain.PriceQuote{}
			for _, h := range holdings {
				q, err := gateway.GetPrice(ctx, h.Ticker)
				if err != nil {
					logger.FromContext(ctx).Warnw("price lookup failed", "ticker", h.Ticker, "error", err)
					continue
				}
				quotes = append(quotes, *q)
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Ticker", "Shares", "Target %", "Price", "Value", "Buy")
			for _, row := range calculator.Rebalance(holdings, quotes) {
				t.Row(
					row.Ticker,
					domain.FormatFloat(row.Qty),
					domain.FormatFloat(row.Pct),
					domain.FormatFloat(row.Price),
					domain.FormatFloat(row.Value),
					domain.FormatFloat(row.Buy),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
}
