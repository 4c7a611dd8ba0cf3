package postgres

import (
	"context"
	"testing"
	"time"

	"stock-trade-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTrade() *domain.Trade {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Trade{
		UserID:             7,
		TickerID:           2,
		Quantity:           decimal.RequireFromString("10"),
		UnitPrice:          decimal.RequireFromString("150.00"),
		TotalPrice:         decimal.RequireFromString("1500"),
		Currency:           domain.CurrencyJPY,
		SettlementCurrency: domain.CurrencyJPY,
		ExchangeRate:       decimal.RequireFromString("1"),
		Side:               domain.SideBuy,
		Type:               domain.OrderTypeLimit,
		Status:             domain.TradeStatusCompleted,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func tradeViewColumns() []string {
	return []string{
		"id", "user_id", "ticker_id", "quantity", "unit_price", "total_price", "currency",
		"settlement_currency", "exchange_rate", "side", "type", "status", "create_at", "update_at",
		"ticker", "brand",
	}
}

func TestTradeRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)
	tr := newTestTrade()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO trade").
		WithArgs(tr.UserID, tr.TickerID, tr.Quantity, tr.UnitPrice, tr.TotalPrice, tr.Currency,
			tr.SettlementCurrency, tr.ExchangeRate, tr.Side, tr.Type, tr.Status,
			tr.CreatedAt, tr.UpdatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(501)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), tx, tr))
	assert.Equal(t, int64(501), tr.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_ListByUser_AllFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)
	since := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM trade t JOIN tickers k .+ t.user_id = \$1 AND t.create_at >= \$2 AND k.ticker ILIKE \$3 ORDER BY t.create_at DESC`).
		WithArgs(int64(7), since, "%AA%").
		WillReturnRows(pgxmock.NewRows(tradeViewColumns()).
			AddRow(int64(2), int64(7), int64(2), "1.00", "100.00", "100.00", domain.CurrencyUSD,
				domain.CurrencyUSD, "1.00", domain.SideSell, domain.OrderTypeMarket, domain.TradeStatusCompleted,
				now, now, "AAPL", "Apple").
			AddRow(int64(1), int64(7), int64(2), "3.00", "95.50", "286.50", domain.CurrencyUSD,
				domain.CurrencyUSD, "1.00", domain.SideBuy, domain.OrderTypeLimit, domain.TradeStatusCompleted,
				now, now, "AAPL", "Apple"))

	views, err := repo.ListByUser(context.Background(), domain.TradeFilter{UserID: 7, Since: &since, Symbol: "AA"})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(2), views[0].ID)
	assert.Equal(t, "AAPL", views[0].Symbol)
	assert.Equal(t, domain.SideSell, views[0].Side)
	assert.True(t, decimal.RequireFromString("286.50").Equal(views[1].TotalPrice))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTradeRepo_ListByUser_UserOnly(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTradeRepo(mock)

	mock.ExpectQuery(`WHERE t.user_id = \$1 ORDER BY`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(tradeViewColumns()))

	views, err := repo.ListByUser(context.Background(), domain.TradeFilter{UserID: 7})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.NoError(t, mock.ExpectationsWereMet())
}
