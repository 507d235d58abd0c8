package repository

import (
	"context"
	"fmt"
	"rebalance/internal/domain"
	"rebalance/internal/logger"
	"strings"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

type alpacaQuoteRepositoryHandler struct {
	MdClient *marketdata.Client
}

func NewAlpacaQuoteRepository(apiKey, apiSecret string, endpoint string) QuoteRepository {
	mdClient := marketdata.NewClient(marketdata.ClientOpts{
		BaseURL:   endpoint,
		APIKey:    apiKey,
		APISecret: apiSecret,
	})

	return alpacaQuoteRepositoryHandler{
		MdClient: mdClient,
	}
}

func (h alpacaQuoteRepositoryHandler) GetQuote(ctx context.Context, ticker string) (*domain.PriceQuote, error) {
	log := logger.FromContext(ctx)

	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: domain.ErrUnknownTicker}
	}

	results, err := h.MdClient.GetLatestQuotes([]string{symbol}, marketdata.GetLatestQuoteRequest{})
	if err != nil {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: fmt.Errorf("alpaca quote failed: %w", err)}
	}
	result, ok := results[symbol]
	if !ok {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: domain.ErrUnknownTicker}
	}
	if result.BidPrice == 0 {
		log.Warnf("alpaca returned 0 bid for %s", symbol)
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: domain.ErrUnknownTicker}
	}

	return &domain.PriceQuote{
		Ticker: ticker,
		Price:  result.BidPrice,
		Date:   result.Timestamp.UTC(),
	}, nil
}
