package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"rebalance/internal/domain"
	"rebalance/internal/logger"
	"rebalance/pkg/backend"
	supabaseauth "rebalance/pkg/supabase-auth"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiUrl        string
	authUrl       string
	authKey       string
	username      string
	password      string
	offline       bool
	offlinePrices map[string]string
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "rebalance",
		Short:        "View and rebalance a stock portfolio against target allocations",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.apiUrl, "api-url", os.Getenv("REBALANCE_API_URL"), "portfolio api base url")
	flags.StringVar(&opts.authUrl, "auth-url", os.Getenv("REBALANCE_AUTH_URL"), "auth provider url")
	flags.StringVar(&opts.authKey, "auth-key", os.Getenv("REBALANCE_AUTH_KEY"), "auth provider public key")
	flags.StringVar(&opts.username, "username", os.Getenv("REBALANCE_USERNAME"), "account email")
	flags.StringVar(&opts.password, "password", os.Getenv("REBALANCE_PASSWORD"), "account password")
	flags.BoolVar(&opts.offline, "offline", false, "use an in-memory portfolio instead of the api")
	flags.StringToStringVar(&opts.offlinePrices, "price", map[string]string{}, "offline price table, e.g. --price SPX=4500")

	rootCmd.AddCommand(
		newTuiCmd(opts),
		newShowCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newDeleteCmd(opts),
	)
	return rootCmd
}

// gateway builds the backend for a command and signs in when credentials
// are configured.
func (o *rootOptions) gateway(ctx context.Context) (backend.Gateway, error) {
	if o.offline {
		prices := map[string]float64{}
		for ticker, raw := range o.offlinePrices {
			price, err := domain.ParseNumberString(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse price for %s: %w", ticker, err)
			}
			prices[ticker] = price
		}
		seed := []domain.Holding{{Ticker: "SPX", Qty: 700, Pct: 100}}
		return backend.NewMemory(seed, prices), nil
	}

	if o.apiUrl == "" {
		return nil, fmt.Errorf("--api-url or REBALANCE_API_URL is required unless --offline is set")
	}

	gateway := backend.New(backend.Config{
		BaseURL: o.apiUrl,
		Auth: supabaseauth.Config{
			Url:     o.authUrl,
			AnonKey: o.authKey,
		},
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	})
	if o.username != "" {
		gateway.SignIn(ctx, o.username, o.password)
	} else {
		logger.FromContext(ctx).Warn("no username configured, calling api anonymously")
	}
	return gateway, nil
}

// commandContext carries the process logger for commands that write to
// the terminal directly.
func commandContext(cmd *cobra.Command) context.Context {
	return logger.WithContext(cmd.Context(), logger.New())
}
