package postgres

import (
	"context"
	"fmt"

	"stock-trade-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletLogRepo implements ports.WalletLogRepository over user_wallet_log.
// Entries are only written inside a trade transaction.
type WalletLogRepo struct{}

// NewWalletLogRepo creates a new WalletLogRepo.
func NewWalletLogRepo() *WalletLogRepo {
	return &WalletLogRepo{}
}

// Create appends an entry within a database transaction. A second entry for
// the same (wallet, trade) returns domain.ErrDuplicate.
func (r *WalletLogRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.WalletLog) error {
	query := `INSERT INTO user_wallet_log (user_wallet_id, trade_id, currency, before_balance, after_balance, change_amount, create_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := tx.QueryRow(ctx, query,
		e.WalletID, e.TradeID, e.Currency,
		e.BeforeBalance, e.AfterBalance, e.ChangeAmount, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert wallet log: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert wallet log: %w", err)
	}
	return nil
}
