package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-trade-ledger/internal/core/domain"
	"stock-trade-ledger/internal/core/ports"
	"stock-trade-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// AuditLogImpl implements ports.AuditLog over the user_wallet_log table.
type AuditLogImpl struct {
	logRepo ports.WalletLogRepository
	now     func() time.Time
}

// NewAuditLog creates a new AuditLogImpl.
func NewAuditLog(logRepo ports.WalletLogRepository) *AuditLogImpl {
	return &AuditLogImpl{
		logRepo: logRepo,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record appends the wallet change caused by trade. before is the wallet as
// it was prior to the ledger mutation.
func (a *AuditLogImpl) Record(ctx context.Context, tx pgx.Tx, trade *domain.Trade, before *domain.Wallet) (*domain.WalletLog, error) {
	if before == nil || trade.UserID != before.UserID {
		return nil, apperror.ErrOwnershipMismatch()
	}

	balance, err := before.Balance(trade.SettlementCurrency)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	delta := trade.WalletDelta()
	entry := &domain.WalletLog{
		WalletID:      before.ID,
		TradeID:       trade.ID,
		Currency:      trade.SettlementCurrency,
		BeforeBalance: balance,
		AfterBalance:  balance.Add(delta),
		ChangeAmount:  delta,
		CreatedAt:     a.now(),
	}

	if err := a.logRepo.Create(ctx, tx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.InternalError(fmt.Errorf("trade %d already logged for wallet %d: %w", trade.ID, before.ID, err))
		}
		return nil, apperror.InternalError(fmt.Errorf("create wallet log: %w", err))
	}
	return entry, nil
}
