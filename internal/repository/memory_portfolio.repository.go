package repository

import (
	"context"
	"rebalance/internal/domain"
	"sync"
)

type memoryPortfolioRepositoryHandler struct {
	mu         sync.RWMutex
	portfolios map[string][]domain.Holding
}

// NewMemoryPortfolioRepository keeps portfolios in process memory. Used for
// local runs and tests; nothing survives a restart.
func NewMemoryPortfolioRepository() PortfolioRepository {
	return &memoryPortfolioRepositoryHandler{
		portfolios: map[string][]domain.Holding{},
	}
}

func (h *memoryPortfolioRepositoryHandler) Get(ctx context.Context, identity string) ([]domain.Holding, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := []domain.Holding{}
	return append(out, h.portfolios[identity]...), nil
}

func (h *memoryPortfolioRepositoryHandler) Set(ctx context.Context, identity string, holdings []domain.Holding) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.portfolios[identity] = append([]domain.Holding{}, holdings...)
	return nil
}

func (h *memoryPortfolioRepositoryHandler) Delete(ctx context.Context, identity string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.portfolios, identity)
	return nil
}
