package backend

import (
	"context"
	"rebalance/internal/domain"
	"strings"
	"sync"
	"time"
)

type memoryGateway struct {
	mu        sync.RWMutex
	portfolio domain.Portfolio
	prices    map[string]float64
}

// NewMemory returns a Gateway that keeps the portfolio in memory. Prices
// are served from the given table; a ticker missing from it is unknown.
func NewMemory(seed []domain.Holding, prices map[string]float64) Gateway {
	table := map[string]float64{}
	for k, v := range prices {
		table[strings.ToUpper(k)] = v
	}
	return &memoryGateway{
		portfolio: domain.Portfolio(seed).Copy(),
		prices:    table,
	}
}

func (m *memoryGateway) SignIn(ctx context.Context, username, password string) {}

func (m *memoryGateway) GetPortfolio(ctx context.Context) ([]domain.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Holding{}
	return append(out, m.portfolio...), nil
}

func (m *memoryGateway) SetPortfolio(ctx context.Context, holdings []domain.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolio = domain.Portfolio(holdings).Copy()
	return nil
}

func (m *memoryGateway) DeletePortfolio(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolio = nil
	return nil
}

func (m *memoryGateway) GetPrice(ctx context.Context, ticker string) (*domain.PriceQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: err}
	}

	m.mu.RLock()
	price, ok := m.prices[strings.ToUpper(strings.TrimSpace(ticker))]
	m.mu.RUnlock()
	if !ok {
		return nil, &domain.PriceLookupError{Ticker: ticker, Err: domain.ErrUnknownTicker}
	}

	return &domain.PriceQuote{
		Ticker: ticker,
		Price:  price,
		Date:   time.Now().UTC(),
	}, nil
}
