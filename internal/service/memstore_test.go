package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"stock-trade-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for PostgreSQL with the properties the
// trade core relies on: unique wallet/holding rows visible to every
// transaction as soon as they are inserted, per-user row locks held until
// commit, and all updates staged until commit.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	wallets  map[int64]*domain.Wallet // by user id
	holdings map[holdingKey]*domain.Holding
	trades   []domain.Trade
	logs     []domain.WalletLog
	tickers  map[int64]*domain.Ticker
	rowLocks map[int64]*sync.Mutex // by user id

	duplicates int
	// missBarrier, when set, is awaited by every read that finds no wallet.
	missBarrier *barrier
	// failHoldingUpdate makes UpdateQuantity fail after staging nothing.
	failHoldingUpdate error
}

type holdingKey struct{ userID, tickerID int64 }

func newMemStore() *memStore {
	return &memStore{
		wallets:  make(map[int64]*domain.Wallet),
		holdings: make(map[holdingKey]*domain.Holding),
		tickers:  make(map[int64]*domain.Ticker),
		rowLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addTicker(t *domain.Ticker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers[t.ID] = t
}

func (s *memStore) seedWallet(userID int64, jpy, usd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := domain.NewWallet(userID, time.Now().UTC())
	w.ID = s.id()
	w.JPYBalance = decimal.RequireFromString(jpy)
	w.USDBalance = decimal.RequireFromString(usd)
	s.wallets[userID] = w
}

func (s *memStore) seedHolding(userID, tickerID int64, qty string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := domain.NewHolding(userID, tickerID, time.Now().UTC())
	h.ID = s.id()
	h.Quantity = decimal.RequireFromString(qty)
	s.holdings[holdingKey{userID, tickerID}] = h
}

func (s *memStore) committedWallet(userID int64) *domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[userID]; ok {
		return w.Clone()
	}
	return nil
}

func (s *memStore) committedHolding(userID, tickerID int64) *domain.Holding {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.holdings[holdingKey{userID, tickerID}]; ok {
		c := *h
		return &c
	}
	return nil
}

func (s *memStore) walletCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wallets)
}

func (s *memStore) tradeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trades)
}

func (s *memStore) walletLogs() []domain.WalletLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WalletLog(nil), s.logs...)
}

func (s *memStore) rowLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[userID] = l
	}
	return l
}

// --- transactions ---

type memTx struct {
	pgx.Tx
	store    *memStore
	done     bool
	locked   map[int64]bool
	wallets  map[int64]*domain.Wallet
	holdings map[holdingKey]*domain.Holding
	created  []func()
	trades   []domain.Trade
	logs     []domain.WalletLog
}

func (s *memStore) Begin(_ context.Context) (pgx.Tx, error) {
	return &memTx{
		store:    s,
		locked:   make(map[int64]bool),
		wallets:  make(map[int64]*domain.Wallet),
		holdings: make(map[holdingKey]*domain.Holding),
	}, nil
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	s := t.store
	s.mu.Lock()
	for userID, w := range t.wallets {
		s.wallets[userID] = w
	}
	for k, h := range t.holdings {
		s.holdings[k] = h
	}
	s.trades = append(s.trades, t.trades...)
	s.logs = append(s.logs, t.logs...)
	s.mu.Unlock()
	t.finish()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	for _, undo := range t.created {
		undo()
	}
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *memTx) finish() {
	t.done = true
	for userID := range t.locked {
		t.store.rowLock(userID).Unlock()
	}
}

func (t *memTx) lock(userID int64) {
	if t.locked[userID] {
		return
	}
	t.store.rowLock(userID).Lock()
	t.locked[userID] = true
}

func asMemTx(tx pgx.Tx) *memTx {
	mt, ok := tx.(*memTx)
	if !ok {
		panic(fmt.Sprintf("unexpected tx type %T", tx))
	}
	return mt
}

// --- ports.WalletRepository ---

type memWalletRepo struct{ s *memStore }

func (r memWalletRepo) GetByUserID(_ context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error) {
	mt := asMemTx(tx)
	if w, ok := mt.wallets[userID]; ok {
		return w.Clone(), nil
	}
	r.s.mu.Lock()
	w, ok := r.s.wallets[userID]
	b := r.s.missBarrier
	r.s.mu.Unlock()
	if !ok {
		if b != nil {
			b.wait()
		}
		return nil, nil
	}
	return w.Clone(), nil
}

func (r memWalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID int64) (*domain.Wallet, error) {
	asMemTx(tx).lock(userID)
	return r.GetByUserID(ctx, tx, userID)
}

func (r memWalletRepo) Create(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mt := asMemTx(tx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.wallets[w.UserID]; ok {
		r.s.duplicates++
		return fmt.Errorf("insert wallet: %w", domain.ErrDuplicate)
	}
	w.ID = r.s.id()
	r.s.wallets[w.UserID] = w.Clone()
	mt.created = append(mt.created, func() { delete(r.s.wallets, w.UserID) })
	return nil
}

func (r memWalletRepo) UpdateBalances(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mt := asMemTx(tx)
	if !mt.locked[w.UserID] {
		return fmt.Errorf("update wallet %d without row lock", w.ID)
	}
	mt.wallets[w.UserID] = w.Clone()
	return nil
}

// --- ports.HoldingRepository ---

type memHoldingRepo struct{ s *memStore }

func (r memHoldingRepo) Get(_ context.Context, tx pgx.Tx, userID, tickerID int64) (*domain.Holding, error) {
	mt := asMemTx(tx)
	key := holdingKey{userID, tickerID}
	if h, ok := mt.holdings[key]; ok {
		c := *h
		return &c, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.holdings[key]
	if !ok {
		return nil, nil
	}
	c := *h
	return &c, nil
}

func (r memHoldingRepo) HeldQuantity(_ context.Context, userID, tickerID int64) (decimal.Decimal, error) {
	if h := r.s.committedHolding(userID, tickerID); h != nil {
		return h.Quantity, nil
	}
	return decimal.Zero, nil
}

func (r memHoldingRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, userID, tickerID int64) (*domain.Holding, error) {
	asMemTx(tx).lock(userID)
	return r.Get(ctx, tx, userID, tickerID)
}

func (r memHoldingRepo) Create(_ context.Context, tx pgx.Tx, h *domain.Holding) error {
	mt := asMemTx(tx)
	key := holdingKey{h.UserID, h.TickerID}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.holdings[key]; ok {
		r.s.duplicates++
		return fmt.Errorf("insert holding: %w", domain.ErrDuplicate)
	}
	h.ID = r.s.id()
	c := *h
	r.s.holdings[key] = &c
	mt.created = append(mt.created, func() { delete(r.s.holdings, key) })
	return nil
}

func (r memHoldingRepo) UpdateQuantity(_ context.Context, tx pgx.Tx, h *domain.Holding) error {
	if r.s.failHoldingUpdate != nil {
		return r.s.failHoldingUpdate
	}
	mt := asMemTx(tx)
	if !mt.locked[h.UserID] {
		return fmt.Errorf("update holding %d without row lock", h.ID)
	}
	if h.Quantity.IsNegative() {
		return fmt.Errorf("user_stock_quantity_check violated")
	}
	c := *h
	mt.holdings[holdingKey{h.UserID, h.TickerID}] = &c
	return nil
}

// --- ports.TradeRepository ---

type memTradeRepo struct{ s *memStore }

func (r memTradeRepo) Create(_ context.Context, tx pgx.Tx, t *domain.Trade) error {
	mt := asMemTx(tx)
	r.s.mu.Lock()
	t.ID = r.s.id()
	r.s.mu.Unlock()
	mt.trades = append(mt.trades, *t)
	return nil
}

func (r memTradeRepo) ListByUser(_ context.Context, f domain.TradeFilter) ([]domain.TradeView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.TradeView
	for _, t := range r.s.trades {
		if t.UserID != f.UserID {
			continue
		}
		if f.Since != nil && t.CreatedAt.Before(*f.Since) {
			continue
		}
		tk := r.s.tickers[t.TickerID]
		if f.Symbol != "" && !strings.Contains(strings.ToUpper(tk.Symbol), strings.ToUpper(f.Symbol)) {
			continue
		}
		out = append(out, domain.TradeView{Trade: t, Symbol: tk.Symbol, Brand: tk.Brand})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// --- ports.WalletLogRepository ---

type memWalletLogRepo struct{ s *memStore }

func (r memWalletLogRepo) Create(_ context.Context, tx pgx.Tx, e *domain.WalletLog) error {
	mt := asMemTx(tx)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, logs := range [][]domain.WalletLog{r.s.logs, mt.logs} {
		for _, l := range logs {
			if l.WalletID == e.WalletID && l.TradeID == e.TradeID {
				return fmt.Errorf("insert wallet log: %w", domain.ErrDuplicate)
			}
		}
	}
	e.ID = r.s.id()
	mt.logs = append(mt.logs, *e)
	return nil
}

// --- ports.TickerRepository ---

type memTickerRepo struct{ s *memStore }

func (r memTickerRepo) GetByID(_ context.Context, id int64) (*domain.Ticker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tickers[id], nil
}

func (r memTickerRepo) GetBySymbol(_ context.Context, symbol string) (*domain.Ticker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tickers {
		if t.Symbol == symbol {
			return t, nil
		}
	}
	return nil, nil
}

// --- helpers ---

// barrier releases all waiters once n have arrived.
type barrier struct {
	mu      sync.Mutex
	n       int
	arrived int
	ch      chan struct{}
}

func newBarrier(n int) *barrier {
	return &barrier{n: n, ch: make(chan struct{})}
}

func (b *barrier) wait() {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.n {
		close(b.ch)
	}
	b.mu.Unlock()
	<-b.ch
}

// fixedOracle serves closes from a map.
type fixedOracle map[string]decimal.Decimal

func (o fixedOracle) LatestClose(_ context.Context, symbol string) (*domain.PriceSnapshot, error) {
	c, ok := o[symbol]
	if !ok {
		return nil, fmt.Errorf("unknown symbol %s", symbol)
	}
	return &domain.PriceSnapshot{
		Quote:         domain.Quote{Symbol: symbol, Close: c},
		PreviousClose: c,
	}, nil
}
