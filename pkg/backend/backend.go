package backend

import (
	"context"
	"rebalance/internal/domain"
)

// Gateway is everything the page needs from the outside world. Two
// implementations exist: the http client in this package and an in-memory
// one for tests and offline use.
type Gateway interface {
	GetPortfolio(ctx context.Context) ([]domain.Holding, error)
	SetPortfolio(ctx context.Context, holdings []domain.Holding) error
	DeletePortfolio(ctx context.Context) error
	GetPrice(ctx context.Context, ticker string) (*domain.PriceQuote, error)
	// SignIn failures are logged, not returned. Later calls fail with
	// a BackendError instead.
	SignIn(ctx context.Context, username, password string)
}
