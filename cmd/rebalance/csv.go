package main

import (
	"fmt"
	"io"
	"os"
	"rebalance/internal/domain"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

func readHoldings(r io.Reader) ([]domain.Holding, error) {
	holdings := []domain.Holding{}
	if err := gocsv.Unmarshal(r, &holdings); err != nil {
		return nil, fmt.Errorf("failed to read holdings csv: %w", err)
	}
	return holdings, nil
}

func writeHoldings(w io.Writer, holdings []domain.Holding) error {
	if err := gocsv.Marshal(holdings, w); err != nil {
		return fmt.Errorf("failed to write holdings csv: %w", err)
	}
	return nil
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the saved portfolio with holdings from a csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			holdings, err := readHoldings(f)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			gateway, err := opts.gateway(ctx)
			if err != nil {
				return err
			}
			if err := gateway.SetPortfolio(ctx, holdings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d holdings\n", len(holdings))
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Write the saved portfolio as csv, to stdout by default",
		Args:  cobra.MaximumNArgs(1),
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

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writeHoldings(out, holdings)
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the saved portfolio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			gateway, err := opts.gateway(ctx)
			if err != nil {
				return err
			}
			return gateway.DeletePortfolio(ctx)
		},
	}
}
