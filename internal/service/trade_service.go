package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"stock-trade-ledger/internal/core/domain"
	"stock-trade-ledger/internal/core/ports"
	"stock-trade-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var tickerFilterPattern = regexp.MustCompile(`^[A-Za-z]*$`)

// TradeServiceImpl implements ports.TradeService. Execute is the trade
// executor; the other methods build on it for the controller layer.
type TradeServiceImpl struct {
	tradeRepo  ports.TradeRepository
	tickerRepo ports.TickerRepository
	wallets    ports.WalletLedger
	holdings   ports.HoldingsLedger
	audit      ports.AuditLog
	validator  ports.OrderValidator
	quotes     ports.QuoteService
	transactor ports.DBTransactor
	log        zerolog.Logger
	now        func() time.Time
}

// NewTradeService creates a new TradeServiceImpl.
func NewTradeService(
	tradeRepo ports.TradeRepository,
	tickerRepo ports.TickerRepository,
	wallets ports.WalletLedger,
	holdings ports.HoldingsLedger,
	audit ports.AuditLog,
	validator ports.OrderValidator,
	quotes ports.QuoteService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TradeServiceImpl {
	return &TradeServiceImpl{
		tradeRepo:  tradeRepo,
		tickerRepo: tickerRepo,
		wallets:    wallets,
		holdings:   holdings,
		audit:      audit,
		validator:  validator,
		quotes:     quotes,
		transactor: transactor,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Execute settles trade in one transaction: validate, persist, re-validate
// under row locks, apply wallet, apply holdings, audit, commit. Any failure
// rolls back every step. The total price is recomputed from the trade's
// fields so the stored row always satisfies the settlement rule.
func (s *TradeServiceImpl) Execute(ctx context.Context, trade *domain.Trade) (*domain.Trade, error) {
	ticker, err := s.getTicker(ctx, trade.TickerID)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, s.prepare(trade, ticker), ticker)
}

// PlaceOrder prices the order intent against the latest quote and executes it.
func (s *TradeServiceImpl) PlaceOrder(ctx context.Context, req ports.OrderRequest) (*domain.Trade, error) {
	ticker, err := s.getTicker(ctx, req.TickerID)
	if err != nil {
		return nil, err
	}
	trade, err := s.buildTrade(ctx, req, ticker)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, trade, ticker)
}

// PreviewOrder runs the first validation pass only, inside a transaction
// that is always rolled back, and returns the priced trade.
func (s *TradeServiceImpl) PreviewOrder(ctx context.Context, req ports.OrderRequest) (*domain.Trade, error) {
	ticker, err := s.getTicker(ctx, req.TickerID)
	if err != nil {
		return nil, err
	}
	trade, err := s.buildTrade(ctx, req, ticker)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.validate(ctx, dbTx, trade, ticker.Symbol, false); err != nil {
		return nil, err
	}
	return trade, nil
}

// ListTrades returns the user's trade history for a period, optionally
// narrowed to tickers containing the given letters.
func (s *TradeServiceImpl) ListTrades(ctx context.Context, q ports.TradeQuery) ([]domain.TradeView, error) {
	period, err := domain.ParsePeriod(q.Period)
	if err != nil {
		return nil, apperror.ErrInvalidSearch(err.Error())
	}
	if !tickerFilterPattern.MatchString(q.Ticker) {
		return nil, apperror.ErrInvalidSearch("ticker filter may only contain letters")
	}

	filter := domain.TradeFilter{UserID: q.UserID, Symbol: q.Ticker}
	if since, ok := period.Since(s.now()); ok {
		filter.Since = &since
	}

	trades, err := s.tradeRepo.ListByUser(ctx, filter)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list trades: %w", err))
	}
	return trades, nil
}

func (s *TradeServiceImpl) getTicker(ctx context.Context, id int64) (*domain.Ticker, error) {
	ticker, err := s.tickerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get ticker: %w", err))
	}
	if ticker == nil {
		return nil, apperror.ErrTickerNotFound()
	}
	return ticker, nil
}

// buildTrade resolves the effective unit price and returns a priced trade.
func (s *TradeServiceImpl) buildTrade(ctx context.Context, req ports.OrderRequest, ticker *domain.Ticker) (*domain.Trade, error) {
	unitPrice := req.UnitPrice
	if req.Type == domain.OrderTypeMarket {
		quote, err := s.quotes.Latest(ctx, ticker.Symbol)
		if err != nil {
			return nil, err
		}
		unitPrice = domain.MarketUnitPrice(req.Side, quote.Close)
	}

	trade := s.prepare(&domain.Trade{
		UserID:             req.UserID,
		TickerID:           ticker.ID,
		Quantity:           req.Quantity,
		UnitPrice:          unitPrice,
		SettlementCurrency: req.SettlementCurrency,
		ExchangeRate:       req.ExchangeRate,
		Side:               req.Side,
		Type:               req.Type,
	}, ticker)

	if err := trade.CheckFields(); err != nil {
		return nil, apperror.ErrInvalidOrder(err.Error())
	}
	return trade, nil
}

// prepare copies trade and fills the fields owned by the executor.
func (s *TradeServiceImpl) prepare(trade *domain.Trade, ticker *domain.Ticker) *domain.Trade {
	t := *trade
	t.ID = 0
	t.Currency = ticker.Currency
	t.TotalPrice = domain.Settle(t.Quantity, t.UnitPrice, t.ExchangeRate, t.Currency, t.SettlementCurrency)
	t.Status = domain.TradeStatusCompleted
	return &t
}

func (s *TradeServiceImpl) execute(ctx context.Context, trade *domain.Trade, ticker *domain.Ticker) (*domain.Trade, error) {
	if err := trade.CheckFields(); err != nil {
		return nil, apperror.ErrInvalidOrder(err.Error())
	}

	exec := domain.NewExecution()
	log := s.log.With().
		Int64("user_id", trade.UserID).
		Str("ticker", ticker.Symbol).
		Str("side", trade.Side.String()).
		Logger()

	log.Info().
		Str("quantity", trade.Quantity.String()).
		Str("unit_price", trade.UnitPrice.String()).
		Str("total_price", trade.TotalPrice.String()).
		Str("settlement_currency", trade.SettlementCurrency.String()).
		Msg("executing trade")

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.run(ctx, dbTx, exec, trade, ticker.Symbol, log); err != nil {
		s.abort(exec, err, log)
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		err = apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		s.abort(exec, err, log)
		return nil, err
	}
	if err := s.advance(exec, domain.StateCommitted, log); err != nil {
		return nil, err
	}

	log.Info().Int64("trade_id", trade.ID).Msg("trade committed")
	return trade, nil
}

// run performs every step before commit, advancing exec as it goes.
func (s *TradeServiceImpl) run(ctx context.Context, tx pgx.Tx, exec *domain.Execution, trade *domain.Trade, symbol string, log zerolog.Logger) error {
	// First pass: plain reads, early user feedback.
	if err := s.validate(ctx, tx, trade, symbol, false); err != nil {
		return err
	}
	if err := s.advance(exec, domain.StateValidated, log); err != nil {
		return err
	}

	now := s.now()
	trade.CreatedAt = now
	trade.UpdatedAt = now
	if err := s.tradeRepo.Create(ctx, tx, trade); err != nil {
		return apperror.InternalError(fmt.Errorf("create trade: %w", err))
	}
	if err := s.advance(exec, domain.StatePersisted, log); err != nil {
		return err
	}

	// Second pass: wallet and holding rows stay locked until commit.
	if err := s.validate(ctx, tx, trade, symbol, true); err != nil {
		return err
	}

	before, err := s.wallets.Apply(ctx, tx, trade)
	if err != nil {
		return err
	}
	if err := s.advance(exec, domain.StateWalletApplied, log); err != nil {
		return err
	}

	if _, err := s.holdings.Apply(ctx, tx, trade); err != nil {
		return err
	}
	if err := s.advance(exec, domain.StateHoldingsApplied, log); err != nil {
		return err
	}

	if _, err := s.audit.Record(ctx, tx, trade, before); err != nil {
		return err
	}
	return nil
}

// validate loads a snapshot inside tx and runs the validator against it.
func (s *TradeServiceImpl) validate(ctx context.Context, tx pgx.Tx, trade *domain.Trade, symbol string, lock bool) error {
	quote, err := s.quotes.Latest(ctx, symbol)
	if err != nil {
		return err
	}

	getWallet, getHolding := s.wallets.GetOrCreate, s.holdings.GetOrCreate
	if lock {
		getWallet, getHolding = s.wallets.GetOrCreateForUpdate, s.holdings.GetOrCreateForUpdate
	}

	wallet, err := getWallet(ctx, tx, trade.UserID)
	if err != nil {
		return err
	}

	// A missing holding on a sell is reported by the validator so that the
	// price band is still checked first.
	holding, err := getHolding(ctx, tx, trade.UserID, trade.TickerID, trade.Side)
	if err != nil && !apperror.HasCode(err, apperror.CodeNoSuchHolding) {
		return err
	}

	return s.validator.Validate(trade, ports.Snapshot{
		Wallet:    wallet,
		Holding:   holding,
		LastClose: quote.Close,
	})
}

func (s *TradeServiceImpl) advance(exec *domain.Execution, next domain.ExecutionState, log zerolog.Logger) error {
	if err := exec.Advance(next); err != nil {
		return apperror.InternalError(err)
	}
	log.Debug().Str("state", next.String()).Msg("trade state advanced")
	return nil
}

func (s *TradeServiceImpl) abort(exec *domain.Execution, cause error, log zerolog.Logger) {
	_ = exec.Advance(domain.StateAborted)

	event := log.Error()
	if apperror.IsValidation(cause) {
		event = log.Warn()
	}
	event.Err(cause).Str("aborted_at", exec.AbortedAt.String()).Msg("trade aborted")
}
