package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"stock-trade-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- External collaborators ---

// PriceOracle returns the latest and previous close of a symbol.
type PriceOracle interface {
	LatestClose(ctx context.Context, symbol string) (*domain.PriceSnapshot, error)
}

// QuoteCache stores price snapshots until the next market refresh.
type QuoteCache interface {
	// Get returns nil on a cache miss.
	Get(ctx context.Context, symbol string) (*domain.PriceSnapshot, error)
	Set(ctx context.Context, snapshot *domain.PriceSnapshot, ttl time.Duration) error
}

// TokenService validates bearer tokens and resolves the caller's user id.
type TokenService interface {
	Generate(userID int64) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID int64
}

// --- Core components ---

// Snapshot is the point-in-time state an order is validated against.
type Snapshot struct {
	Wallet *domain.Wallet
	// Holding is nil when the user has never held the instrument.
	Holding   *domain.Holding
	LastClose decimal.Decimal
}

// OrderValidator runs the stateless order checks.
type OrderValidator interface {
	Validate(trade *domain.Trade, snap Snapshot) error
}

// WalletLedger owns every read and write of wallet rows.
type WalletLedger interface {
	GetOrCreate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error)
	// GetOrCreateForUpdate is GetOrCreate holding a row lock until tx ends.
	GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error)
	// Apply mutates the settlement balance and returns the wallet as it was
	// before the mutation.
	Apply(ctx context.Context, tx pgx.Tx, trade *domain.Trade) (before *domain.Wallet, err error)
}

// HoldingsLedger owns every read and write of holding rows.
type HoldingsLedger interface {
	// GetOrCreate lazily creates the holding for buys; sells on a missing
	// holding fail with NoSuchHolding.
	GetOrCreate(ctx context.Context, tx pgx.Tx, userID, tickerID int64, side domain.Side) (*domain.Holding, error)
	GetOrCreateForUpdate(ctx context.Context, tx pgx.Tx, userID, tickerID int64, side domain.Side) (*domain.Holding, error)
	Apply(ctx context.Context, tx pgx.Tx, trade *domain.Trade) (*domain.Holding, error)
}

// AuditLog appends the wallet mutation record of a trade.
type AuditLog interface {
	Record(ctx context.Context, tx pgx.Tx, trade *domain.Trade, before *domain.Wallet) (*domain.WalletLog, error)
}

// QuoteService resolves price snapshots, failing with PriceUnavailable.
type QuoteService interface {
	Latest(ctx context.Context, symbol string) (*domain.PriceSnapshot, error)
}

// TradeExecutor settles a fully-built trade atomically.
type TradeExecutor interface {
	Execute(ctx context.Context, trade *domain.Trade) (*domain.Trade, error)
}

// TradeService is the API consumed by the controller layer.
type TradeService interface {
	TradeExecutor
	PlaceOrder(ctx context.Context, req OrderRequest) (*domain.Trade, error)
	PreviewOrder(ctx context.Context, req OrderRequest) (*domain.Trade, error)
	ListTrades(ctx context.Context, q TradeQuery) ([]domain.TradeView, error)
}

// OrderPageService builds the order form snapshot.
type OrderPageService interface {
	GetOrderPage(ctx context.Context, userID int64, symbol string) (*OrderPage, error)
}

// OrderRequest is the caller's order intent before pricing.
type OrderRequest struct {
	UserID             int64
	TickerID           int64
	Side               domain.Side
	Type               domain.OrderType
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal // ignored for market orders
	SettlementCurrency domain.Currency
	ExchangeRate       decimal.Decimal
}

// TradeQuery filters trade history.
type TradeQuery struct {
	UserID int64
	Period string
	Ticker string
}

// OrderPage is the state shown on the order form.
type OrderPage struct {
	Ticker     *domain.Ticker
	Quote      *domain.PriceSnapshot
	JPYBalance decimal.Decimal
	USDBalance decimal.Decimal
	Held       decimal.Decimal
}
