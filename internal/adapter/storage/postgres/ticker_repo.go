package postgres

import (
	"context"
	"errors"
	"fmt"

	"stock-trade-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// TickerRepo implements ports.TickerRepository.
type TickerRepo struct {
	pool Pool
}

// NewTickerRepo creates a new TickerRepo.
func NewTickerRepo(pool Pool) *TickerRepo {
	return &TickerRepo{pool: pool}
}

// GetByID fetches a ticker by ID.
func (r *TickerRepo) GetByID(ctx context.Context, id int64) (*domain.Ticker, error) {
	query := `SELECT id, ticker, brand, currency FROM tickers WHERE id = $1`

	t, err := scanTicker(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get ticker by id: %w", err)
	}
	return t, nil
}

// GetBySymbol fetches a ticker by its exchange symbol.
func (r *TickerRepo) GetBySymbol(ctx context.Context, symbol string) (*domain.Ticker, error) {
	query := `SELECT id, ticker, brand, currency FROM tickers WHERE ticker = $1`

	t, err := scanTicker(r.pool.QueryRow(ctx, query, symbol))
	if err != nil {
		return nil, fmt.Errorf("get ticker by symbol: %w", err)
	}
	return t, nil
}

func scanTicker(row pgx.Row) (*domain.Ticker, error) {
	t := &domain.Ticker{}
	if err := row.Scan(&t.ID, &t.Symbol, &t.Brand, &t.Currency); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}
