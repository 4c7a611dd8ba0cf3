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

// HoldingsLedgerImpl implements ports.HoldingsLedger.
type HoldingsLedgerImpl struct {
	holdingRepo ports.HoldingRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewHoldingsLedger creates a new HoldingsLedgerImpl.
func NewHoldingsLedger(holdingRepo ports.HoldingRepository, log zerolog.Logger) *HoldingsLedgerImpl {
	return &HoldingsLedgerImpl{
		holdingRepo: holdingRepo,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type holdingReader func(ctx context.Context, tx pgx.Tx, userID, tickerID int64) (*domain.Holding, error)

func (l *HoldingsLedgerImpl) GetOrCreate(ctx context.Context, tx pgx.Tx, userID, tickerID int64, side domain.Side) (*domain.Holding, error) {
	return l.getOrCreate(ctx, tx, userID, tickerID, side, l.holdingRepo.Get)
}

func (l *HoldingsLedgerImpl) GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, userID, tickerID int64, side domain.Side) (*domain.Holding, error) {
	return l.getOrCreate(ctx, tx, userID, tickerID, side, l.holdingRepo.GetForUpdate)
}

// getOrCreate only creates for buys: there is nothing to sell from a
// holding that never existed.
func (l *HoldingsLedgerImpl) getOrCreate(ctx context.Context, tx pgx.Tx, userID, tickerID int64, side domain.Side, read holdingReader) (*domain.Holding, error) {
	holding, err := read(ctx, tx, userID, tickerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get holding: %w", err))
	}
	if holding != nil {
		return holding, nil
	}
	if side == domain.SideSell {
		return nil, apperror.ErrNoSuchHolding()
	}

	holding = domain.NewHolding(userID, tickerID, l.now())
	err = l.holdingRepo.Create(ctx, tx, holding)
	if err == nil {
		return holding, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, apperror.InternalError(fmt.Errorf("create holding: %w", err))
	}

	l.log.Debug().Int64("user_id", userID).Int64("ticker_id", tickerID).Msg("holding created concurrently, re-reading")

	holding, err = read(ctx, tx, userID, tickerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-read holding: %w", err))
	}
	if holding == nil {
		return nil, apperror.ErrLazyCreateConflict("holding", domain.ErrDuplicate)
	}
	return holding, nil
}

// Apply adds the traded quantity for buys and removes it for sells.
func (l *HoldingsLedgerImpl) Apply(ctx context.Context, tx pgx.Tx, trade *domain.Trade) (*domain.Holding, error) {
	holding, err := l.GetOrCreateForUpdate(ctx, tx, trade.UserID, trade.TickerID, trade.Side)
	if err != nil {
		return nil, err
	}

	if !trade.IsBuy() && !holding.Covers(trade.Quantity) {
		return nil, apperror.ErrInsufficientHoldings()
	}

	holding.Quantity = holding.Quantity.Add(trade.HoldingDelta())
	holding.UpdatedAt = l.now()

	if err := l.holdingRepo.UpdateQuantity(ctx, tx, holding); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update holding: %w", err))
	}
	return holding, nil
}
