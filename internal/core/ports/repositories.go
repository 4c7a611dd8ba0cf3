package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"stock-trade-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TradeRepository persists settled trades.
type TradeRepository interface {
	// Create inserts the trade and assigns its ID.
	Create(ctx context.Context, tx pgx.Tx, trade *domain.Trade) error
	// ListByUser returns the user's trades joined with their ticker, newest first.
	ListByUser(ctx context.Context, filter domain.TradeFilter) ([]domain.TradeView, error)
}

// WalletRepository defines persistence operations for wallets.
// All methods run inside the caller's transaction. Get methods return
// (nil, nil) when no row exists.
type WalletRepository interface {
	GetByUserID(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error)
	// Create returns domain.ErrDuplicate if the user already has a wallet.
	// A duplicate does not abort the enclosing transaction.
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	UpdateBalances(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
}

// HoldingRepository defines persistence operations for holdings.
type HoldingRepository interface {
	Get(ctx context.Context, tx pgx.Tx, userID, tickerID int64) (*domain.Holding, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, userID, tickerID int64) (*domain.Holding, error)
	// HeldQuantity reads without a transaction; zero when no row exists.
	HeldQuantity(ctx context.Context, userID, tickerID int64) (decimal.Decimal, error)
	// Create returns domain.ErrDuplicate if the (user, ticker) row exists.
	Create(ctx context.Context, tx pgx.Tx, holding *domain.Holding) error
	UpdateQuantity(ctx context.Context, tx pgx.Tx, holding *domain.Holding) error
}

// WalletLogRepository appends audit entries.
type WalletLogRepository interface {
	// Create returns domain.ErrDuplicate if the (wallet, trade) pair was logged.
	Create(ctx context.Context, tx pgx.Tx, entry *domain.WalletLog) error
}

// TickerRepository reads the instrument catalogue.
type TickerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticker, error)
	GetBySymbol(ctx context.Context, symbol string) (*domain.Ticker, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
