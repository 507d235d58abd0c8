package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"rebalance/internal/db/models/postgres/public/model"
	"rebalance/internal/db/models/postgres/public/table"
	"rebalance/internal/domain"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

//go:generate mockgen -source=portfolio.repository.go -destination=mocks/mock_portfolio.repository.go

// PortfolioRepository stores one portfolio per identity. Set replaces the
// whole portfolio; there are no partial updates.
type PortfolioRepository interface {
	Get(ctx context.Context, identity string) ([]domain.Holding, error)
	Set(ctx context.Context, identity string, holdings []domain.Holding) error
	Delete(ctx context.Context, identity string) error
}

type portfolioRepositoryHandler struct {
	Db *sql.DB
}

func NewPortfolioRepository(db *sql.DB) PortfolioRepository {
	return portfolioRepositoryHandler{Db: db}
}

func (h portfolioRepositoryHandler) Get(ctx context.Context, identity string) ([]domain.Holding, error) {
	t := table.Portfolio
	query := t.SELECT(t.AllColumns).
		WHERE(t.UserIdentity.EQ(postgres.String(identity)))

	out := model.Portfolio{}
	err := query.QueryContext(ctx, h.Db, &out)
	if errors.Is(err, qrm.ErrNoRows) {
		return []domain.Holding{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	holdings := []domain.Holding{}
	if err := json.Unmarshal([]byte(out.Holdings), &holdings); err != nil {
		return nil, fmt.Errorf("failed to decode stored portfolio: %w", err)
	}

	return holdings, nil
}

func (h portfolioRepositoryHandler) Set(ctx context.Context, identity string, holdings []domain.Holding) error {
	if holdings == nil {
		holdings = []domain.Holding{}
	}
	b, err := json.Marshal(holdings)
	if err != nil {
		return fmt.Errorf("failed to encode portfolio: %w", err)
	}

	t := table.Portfolio
	now := time.Now().UTC()
	newModel := model.Portfolio{
		UserIdentity: identity,
		Holdings:     string(b),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	query := t.INSERT(t.AllColumns).
		MODEL(newModel).
		ON_CONFLICT(t.UserIdentity).DO_UPDATE(
		postgres.SET(
			t.Holdings.SET(t.EXCLUDED.Holdings),
			t.UpdatedAt.SET(t.EXCLUDED.UpdatedAt),
		),
	)

	_, err = query.ExecContext(ctx, h.Db)
	if err != nil {
		return fmt.Errorf("failed to set portfolio: %w", err)
	}

	return nil
}

func (h portfolioRepositoryHandler) Delete(ctx context.Context, identity string) error {
	t := table.Portfolio
	query := t.DELETE().
		WHERE(t.UserIdentity.EQ(postgres.String(identity)))

	_, err := query.ExecContext(ctx, h.Db)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}

	return nil
}
