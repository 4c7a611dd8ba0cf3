package postgres

import (
	"context"
	"fmt"
	"strings"

	"stock-trade-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// TradeRepo implements ports.TradeRepository.
type TradeRepo struct {
	pool Pool
}

// NewTradeRepo creates a new TradeRepo.
func NewTradeRepo(pool Pool) *TradeRepo {
	return &TradeRepo{pool: pool}
}

// Create inserts a trade within a database transaction and sets its ID.
func (r *TradeRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Trade) error {
	query := `INSERT INTO trade (user_id, ticker_id, quantity, unit_price, total_price, currency,
		settlement_currency, exchange_rate, side, type, status, create_at, update_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`

	err := tx.QueryRow(ctx, query,
		t.UserID, t.TickerID, t.Quantity, t.UnitPrice, t.TotalPrice, t.Currency,
		t.SettlementCurrency, t.ExchangeRate, t.Side, t.Type, t.Status,
		t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// ListByUser returns the user's trades joined with their ticker, newest first.
func (r *TradeRepo) ListByUser(ctx context.Context, f domain.TradeFilter) ([]domain.TradeView, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("t.user_id = $%d", argIdx))
	args = append(args, f.UserID)
	argIdx++

	if f.Since != nil {
		conditions = append(conditions, fmt.Sprintf("t.create_at >= $%d", argIdx))
		args = append(args, *f.Since)
		argIdx++
	}
	if f.Symbol != "" {
		conditions = append(conditions, fmt.Sprintf("k.ticker ILIKE $%d", argIdx))
		args = append(args, "%"+f.Symbol+"%")
	}

	query := fmt.Sprintf(`SELECT t.id, t.user_id, t.ticker_id, t.quantity::text, t.unit_price::text,
		t.total_price::text, t.currency, t.settlement_currency, COALESCE(t.exchange_rate, 1)::text,
		t.side, t.type, t.status, t.create_at, t.update_at, k.ticker, k.brand
		FROM trade t JOIN tickers k ON k.id = t.ticker_id
		WHERE %s ORDER BY t.create_at DESC, t.id DESC`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	defer rows.Close()

	var views []domain.TradeView
	for rows.Next() {
		v := domain.TradeView{}
		err := rows.Scan(
			&v.ID, &v.UserID, &v.TickerID, &v.Quantity, &v.UnitPrice,
			&v.TotalPrice, &v.Currency, &v.SettlementCurrency, &v.ExchangeRate,
			&v.Side, &v.Type, &v.Status, &v.CreatedAt, &v.UpdatedAt, &v.Symbol, &v.Brand,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return views, nil
}
