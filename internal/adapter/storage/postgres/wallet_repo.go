package postgres

import (
	"context"
	"errors"
	"fmt"

	"stock-trade-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const walletColumns = `id, user_id, jpy_balance::text, usd_balance::text, create_at, update_at`

// WalletRepo implements ports.WalletRepository over user_wallet. Every
// method runs on the caller's transaction.
type WalletRepo struct{}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo() *WalletRepo {
	return &WalletRepo{}
}

// Create inserts w inside a savepoint and sets its ID. A unique violation
// on user_id rolls back the savepoint only and returns domain.ErrDuplicate,
// so tx stays usable for the re-read.
func (r *WalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `INSERT INTO user_wallet (user_id, jpy_balance, usd_balance, create_at, update_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("wallet savepoint: %w", err)
	}

	err = sp.QueryRow(ctx, query, w.UserID, w.JPYBalance, w.USDBalance, w.CreatedAt, w.UpdatedAt).Scan(&w.ID)
	if err != nil {
		_ = sp.Rollback(ctx)
		if isUniqueViolation(err) {
			return fmt.Errorf("insert wallet for user %d: %w", w.UserID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release wallet savepoint: %w", err)
	}
	return nil
}

// GetByUserID fetches a wallet by owner without locking.
func (r *WalletRepo) GetByUserID(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM user_wallet WHERE user_id = $1`

	w, err := scanWallet(tx.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("get wallet by user id: %w", err)
	}
	return w, nil
}

// GetByUserIDForUpdate fetches a wallet by owner with pessimistic locking.
// This MUST be called within a transaction.
func (r *WalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM user_wallet WHERE user_id = $1 FOR UPDATE`

	w, err := scanWallet(tx.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("get wallet for update by user id: %w", err)
	}
	return w, nil
}

// UpdateBalances writes both balances of w within a transaction.
func (r *WalletRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `UPDATE user_wallet SET jpy_balance = $1, usd_balance = $2, update_at = $3 WHERE id = $4`

	tag, err := tx.Exec(ctx, query, w.JPYBalance, w.USDBalance, w.UpdatedAt, w.ID)
	if err != nil {
		return fmt.Errorf("update wallet balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %d", w.ID)
	}
	return nil
}

// scanWallet returns nil, nil when the row does not exist.
func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.UserID, &w.JPYBalance, &w.USDBalance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}
