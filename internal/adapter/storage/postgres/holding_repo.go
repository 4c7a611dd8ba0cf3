package postgres

import (
	"context"
	"errors"
	"fmt"

	"stock-trade-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const holdingColumns = `id, user_id, ticker_id, quantity::text, create_at, update_at`

// HoldingRepo implements ports.HoldingRepository over user_stock.
type HoldingRepo struct {
	pool Pool
}

// NewHoldingRepo creates a new HoldingRepo.
func NewHoldingRepo(pool Pool) *HoldingRepo {
	return &HoldingRepo{pool: pool}
}

// Create inserts h inside a savepoint and sets its ID. A unique violation
// on (user_id, ticker_id) returns domain.ErrDuplicate.
func (r *HoldingRepo) Create(ctx context.Context, tx pgx.Tx, h *domain.Holding) error {
	query := `INSERT INTO user_stock (user_id, ticker_id, quantity, create_at, update_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("holding savepoint: %w", err)
	}

	err = sp.QueryRow(ctx, query, h.UserID, h.TickerID, h.Quantity, h.CreatedAt, h.UpdatedAt).Scan(&h.ID)
	if err != nil {
		_ = sp.Rollback(ctx)
		if isUniqueViolation(err) {
			return fmt.Errorf("insert holding for user %d ticker %d: %w", h.UserID, h.TickerID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert holding: %w", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release holding savepoint: %w", err)
	}
	return nil
}

// Get fetches a holding without locking.
func (r *HoldingRepo) Get(ctx context.Context, tx pgx.Tx, userID, tickerID int64) (*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM user_stock WHERE user_id = $1 AND ticker_id = $2`

	h, err := scanHolding(tx.QueryRow(ctx, query, userID, tickerID))
	if err != nil {
		return nil, fmt.Errorf("get holding: %w", err)
	}
	return h, nil
}

// HeldQuantity reads the quantity held outside any transaction. A user who
// never held the ticker holds zero.
func (r *HoldingRepo) HeldQuantity(ctx context.Context, userID, tickerID int64) (decimal.Decimal, error) {
	query := `SELECT quantity::text FROM user_stock WHERE user_id = $1 AND ticker_id = $2`

	var qty decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, userID, tickerID).Scan(&qty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get held quantity: %w", err)
	}
	return qty, nil
}

// GetForUpdate fetches a holding with pessimistic locking.
// This MUST be called within a transaction.
func (r *HoldingRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID, tickerID int64) (*domain.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM user_stock WHERE user_id = $1 AND ticker_id = $2 FOR UPDATE`

	h, err := scanHolding(tx.QueryRow(ctx, query, userID, tickerID))
	if err != nil {
		return nil, fmt.Errorf("get holding for update: %w", err)
	}
	return h, nil
}

// UpdateQuantity writes the quantity of h within a transaction.
func (r *HoldingRepo) UpdateQuantity(ctx context.Context, tx pgx.Tx, h *domain.Holding) error {
	query := `UPDATE user_stock SET quantity = $1, update_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, h.Quantity, h.UpdatedAt, h.ID)
	if err != nil {
		return fmt.Errorf("update holding quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("holding not found: %d", h.ID)
	}
	return nil
}

func scanHolding(row pgx.Row) (*domain.Holding, error) {
	h := &domain.Holding{}
	err := row.Scan(&h.ID, &h.UserID, &h.TickerID, &h.Quantity, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}
