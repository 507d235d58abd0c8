package repository

import (
	"context"
	"fmt"
	"rebalance/internal/domain"
	"strings"
	"time"

	"github.com/piquette/finance-go/quote"
)

//go:generate mockgen -source=quote.repository.go -destination=mocks/mock_quote.repository.go

// QuoteRepository looks up the live price of a single ticker. Misses are
// reported as *domain.PriceLookupError wrapping domain.ErrUnknownTicker.
type QuoteRepository interface {
	GetQuote(ctx context.Context, ticker string) (*domain.PriceQuote, error)
}

type yahooQuoteRepositoryHandler struct{}

func NewYahooQuoteRepository() QuoteRepository {
	return yahooQuoteRepositoryHandler{}
}

func (h yahooQuoteRepositoryHandler) GetQuote(ctx context.Context, ticker string) (*domain.PriceQuote, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: domain.ErrUnknownTicker}
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: fmt.Errorf("yahoo quote failed: %w", err)}
	}
	if q == nil || q.RegularMarketPrice <= 0 {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: domain.ErrUnknownTicker}
	}

	return &domain.PriceQuote{
		Ticker: ticker,
		Price:  q.RegularMarketPrice,
		Date:   time.Unix(int64(q.RegularMarketTime), 0).UTC(),
	}, nil
}
