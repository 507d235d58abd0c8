package service

import (
	"context"
	"errors"
	"fmt"
	"rebalance/internal/calculator"
	"rebalance/internal/domain"
	"rebalance/internal/logger"
	"rebalance/internal/repository"
	"sync"
)

type PortfolioService interface {
	GetPortfolio(ctx context.Context, identity string) ([]domain.Holding, error)
	SetPortfolio(ctx context.Context, identity string, holdings []domain.Holding) error
	DeletePortfolio(ctx context.Context, identity string) error
	GetPrice(ctx context.Context, ticker string) (*domain.PriceQuote, error)
	Rebalance(ctx context.Context, identity string) ([]domain.DisplayRow, error)
}

type portfolioServiceHandler struct {
	PortfolioRepository repository.PortfolioRepository
	QuoteRepository     repository.QuoteRepository
	numQuoteWorkers     int
}

func NewPortfolioService(
	portfolioRepository repository.PortfolioRepository,
	quoteRepository repository.QuoteRepository,
) PortfolioService {
	return portfolioServiceHandler{
		PortfolioRepository: portfolioRepository,
		QuoteRepository:     quoteRepository,
		numQuoteWorkers:     10,
	}
}

func (h portfolioServiceHandler) GetPortfolio(ctx context.Context, identity string) ([]domain.Holding, error) {
	holdings, err := h.PortfolioRepository.Get(ctx, identity)
	if err != nil {
		return nil, &domain.BackendError{Op: "load", Err: err}
	}
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	return holdings, nil
}

func (h portfolioServiceHandler) SetPortfolio(ctx context.Context, identity string, holdings []domain.Holding) error {
	log := logger.FromContext(ctx)

	err := h.PortfolioRepository.Set(ctx, identity, holdings)
	if err != nil {
		return &domain.BackendError{Op: "save", Err: err}
	}
	log.Infof("saved portfolio with %d holdings", len(holdings))
	return nil
}

func (h portfolioServiceHandler) DeletePortfolio(ctx context.Context, identity string) error {
	err := h.PortfolioRepository.Delete(ctx, identity)
	if err != nil {
		return &domain.BackendError{Op: "delete", Err: err}
	}
	return nil
}

func (h portfolioServiceHandler) GetPrice(ctx context.Context, ticker string) (*domain.PriceQuote, error) {
	q, err := h.QuoteRepository.GetQuote(ctx, ticker)
	if err != nil {
		lookupErr := &domain.PriceLookupError{}
		if errors.As(err, &lookupErr) {
			return nil, err
		}
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: err}
	}
	return q, nil
}

// Rebalance computes display rows for the stored portfolio. Quotes that
// cannot be found are left out, which prices those rows at 0.
func (h portfolioServiceHandler) Rebalance(ctx context.Context, identity string) ([]domain.DisplayRow, error) {
	holdings, err := h.GetPortfolio(ctx, identity)
	if err != nil {
		return nil, err
	}

	quotes, err := h.getQuotes(ctx, domain.Portfolio(holdings).Tickers())
	if err != nil {
		return nil, err
	}

	return calculator.Rebalance(holdings, quotes), nil
}

// getQuotes looks tickers up concurrently. Results keep the order of
// tickers; failed lookups are logged and skipped.
func (h portfolioServiceHandler) getQuotes(ctx context.Context, tickers []string) ([]domain.PriceQuote, error) {
	log := logger.FromContext(ctx)

	results := make([]*domain.PriceQuote, len(tickers))
	inputCh := make(chan int, len(tickers))
	for i := range tickers {
		inputCh <- i
	}
	close(inputCh)

	numWorkers := h.numQuoteWorkers
	if numWorkers <= 0 || numWorkers > len(tickers) {
		numWorkers = len(tickers)
	}

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range inputCh {
				if ctx.Err() != nil {
					return
				}
				q, err := h.GetPrice(ctx, tickers[i])
				if err != nil {
					log.Warnf("skipping quote: %v", err)
					continue
				}
				results[i] = q
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}

	quotes := []domain.PriceQuote{}
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	return quotes, nil
}
