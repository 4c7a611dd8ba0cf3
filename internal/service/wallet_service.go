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
	"github.com/rs/zerolog"
)

// WalletLedgerImpl implements ports.WalletLedger.
type WalletLedgerImpl struct {
	walletRepo ports.WalletRepository
	log        zerolog.Logger
	now        func() time.Time
}

// NewWalletLedger creates a new WalletLedgerImpl.
func NewWalletLedger(walletRepo ports.WalletRepository, log zerolog.Logger) *WalletLedgerImpl {
	return &WalletLedgerImpl{
		walletRepo: walletRepo,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type walletReader func(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error)

// GetOrCreate returns the user's wallet, creating an empty one on first access.
func (l *WalletLedgerImpl) GetOrCreate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error) {
	return l.getOrCreate(ctx, tx, userID, l.walletRepo.GetByUserID)
}

// GetOrCreateForUpdate is GetOrCreate with the row locked until tx ends.
func (l *WalletLedgerImpl) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error) {
	return l.getOrCreate(ctx, tx, userID, l.walletRepo.GetByUserIDForUpdate)
}

// getOrCreate inserts on a miss. A duplicate insert means another
// transaction won the race; the row is re-read exactly once.
func (l *WalletLedgerImpl) getOrCreate(ctx context.Context, tx pgx.Tx, userID int64, read walletReader) (*domain.Wallet, error) {
	wallet, err := read(ctx, tx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = domain.NewWallet(userID, l.now())
	err = l.walletRepo.Create(ctx, tx, wallet)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	l.log.Debug().Int64("user_id", userID).Msg("wallet created concurrently, re-reading")

	wallet, err = read(ctx, tx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-read wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrLazyCreateConflict("wallet", domain.ErrDuplicate)
	}
	return wallet, nil
}

// Apply debits (buy) or credits (sell) the settlement balance under a row
// lock and returns the wallet as it was before the change.
func (l *WalletLedgerImpl) Apply(ctx context.Context, tx pgx.Tx, trade *domain.Trade) (*domain.Wallet, error) {
	wallet, err := l.GetOrCreateForUpdate(ctx, tx, trade.UserID)
	if err != nil {
		return nil, err
	}

	balance, err := wallet.Balance(trade.SettlementCurrency)
	if err != nil {
		return nil, apperror.ErrUnsupportedCurrency(trade.SettlementCurrency.String())
	}
	if trade.IsBuy() && balance.LessThan(trade.TotalPrice) {
		return nil, apperror.ErrInsufficientBalance()
	}

	before := wallet.Clone()
	if err := wallet.SetBalance(trade.SettlementCurrency, balance.Add(trade.WalletDelta())); err != nil {
		return nil, apperror.InternalError(err)
	}
	wallet.UpdatedAt = l.now()

	if err := l.walletRepo.UpdateBalances(ctx, tx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}

	l.log.Debug().
		Int64("wallet_id", wallet.ID).
		Str("currency", trade.SettlementCurrency.String()).
		Str("delta", trade.WalletDelta().String()).
		Msg("wallet applied")

	return before, nil
}
