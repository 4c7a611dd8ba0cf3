package service

import (
	"context"
	"fmt"
	"strings"

	"stock-trade-ledger/internal/core/ports"
	"stock-trade-ledger/pkg/apperror"
)

// OrderPageServiceImpl implements ports.OrderPageService.
type OrderPageServiceImpl struct {
	tickerRepo  ports.TickerRepository
	holdingRepo ports.HoldingRepository
	wallets     ports.WalletLedger
	quotes      ports.QuoteService
	transactor  ports.DBTransactor
}

// NewOrderPageService creates a new OrderPageServiceImpl.
func NewOrderPageService(
	tickerRepo ports.TickerRepository,
	holdingRepo ports.HoldingRepository,
	wallets ports.WalletLedger,
	quotes ports.QuoteService,
	transactor ports.DBTransactor,
) *OrderPageServiceImpl {
	return &OrderPageServiceImpl{
		tickerRepo:  tickerRepo,
		holdingRepo: holdingRepo,
		wallets:     wallets,
		quotes:      quotes,
		transactor:  transactor,
	}
}

// GetOrderPage returns the ticker, its latest quote, the user's balances and
// the quantity held. Visiting the page creates the wallet if needed.
func (s *OrderPageServiceImpl) GetOrderPage(ctx context.Context, userID int64, symbol string) (*ports.OrderPage, error) {
	ticker, err := s.tickerRepo.GetBySymbol(ctx, strings.ToUpper(symbol))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get ticker: %w", err))
	}
	if ticker == nil {
		return nil, apperror.ErrTickerNotFound()
	}

	quote, err := s.quotes.Latest(ctx, ticker.Symbol)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.wallets.GetOrCreate(ctx, dbTx, userID)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	held, err := s.holdingRepo.HeldQuantity(ctx, userID, ticker.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get held quantity: %w", err))
	}

	return &ports.OrderPage{
		Ticker:     ticker,
		Quote:      quote,
		JPYBalance: wallet.JPYBalance,
		USDBalance: wallet.USDBalance,
		Held:       held,
	}, nil
}
