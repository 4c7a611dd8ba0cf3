package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name       string
		qty        string
		price      string
		rate       string
		trade      Currency
		settlement Currency
		want       string
	}{
		{"jpy same currency forces rate 1", "10", "150.00", "140.25", CurrencyJPY, CurrencyJPY, "1500"},
		{"jpy rounds up fractional yen", "3", "100.01", "1", CurrencyUSD, CurrencyJPY, "301"},
		{"usd to jpy conversion ceils", "1", "10.00", "149.55", CurrencyUSD, CurrencyJPY, "1496"},
		{"usd half-up at cent boundary", "1", "0.01", "0.50", CurrencyJPY, CurrencyUSD, "0.01"},
		{"usd half-up rounds down below half", "3", "0.33", "0.51", CurrencyJPY, CurrencyUSD, "0.5"},
		{"usd same currency", "2.5", "10.10", "9.99", CurrencyUSD, CurrencyUSD, "25.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Settle(d(tt.qty), d(tt.price), d(tt.rate), tt.trade, tt.settlement)
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestSettle_JPYIsCeiling(t *testing.T) {
	prices := []string{"0.01", "99.99", "150.49", "150.50", "1234.56"}
	for _, p := range prices {
		raw := d("7").Mul(d(p)).Mul(d("1.37"))
		got := Settle(d("7"), d(p), d("1.37"), CurrencyUSD, CurrencyJPY)

		assert.True(t, got.Equal(got.Truncate(0)), "integer valued for %s", p)
		assert.True(t, got.GreaterThanOrEqual(raw), "never below raw total for %s", p)
		assert.True(t, got.Sub(raw).LessThan(decimal.NewFromInt(1)))
	}
}

func TestSettle_USDHasTwoPlaces(t *testing.T) {
	got := Settle(d("3"), d("33.33"), d("0.0067"), CurrencyJPY, CurrencyUSD)
	assert.LessOrEqual(t, -got.Exponent(), int32(2))
	assert.True(t, d("0.67").Equal(got))
}

func TestPriceBand(t *testing.T) {
	lower, upper := PriceBand(d("100.00"))
	assert.Equal(t, "90.00", lower.StringFixed(2))
	assert.Equal(t, "110.00", upper.StringFixed(2))

	lower, upper = PriceBand(d("123.456"))
	assert.Equal(t, "111.11", lower.StringFixed(2))
	assert.Equal(t, "135.81", upper.StringFixed(2))
}

func TestInPriceBand(t *testing.T) {
	assert.False(t, InPriceBand(d("130.00"), d("100.00")))
	assert.True(t, InPriceBand(d("105.00"), d("100.00")))
	assert.True(t, InPriceBand(d("90.00"), d("100.00")))
	assert.True(t, InPriceBand(d("110.00"), d("100.00")))
	assert.False(t, InPriceBand(d("89.99"), d("100.00")))
}

func TestMarketUnitPrice(t *testing.T) {
	assert.Equal(t, "110.00", MarketUnitPrice(SideBuy, d("100.00")).StringFixed(2))
	assert.Equal(t, "90.00", MarketUnitPrice(SideSell, d("100.00")).StringFixed(2))
	assert.True(t, InPriceBand(MarketUnitPrice(SideBuy, d("100.00")), d("100.00")))
	assert.True(t, InPriceBand(MarketUnitPrice(SideSell, d("37.77")), d("37.77")))
}

func TestCurrency_IsSupported(t *testing.T) {
	assert.True(t, CurrencyJPY.IsSupported())
	assert.True(t, CurrencyUSD.IsSupported())
	assert.False(t, Currency("EUR").IsSupported())
	assert.Equal(t, []Currency{CurrencyJPY, CurrencyUSD}, SupportedCurrencies())
}

func TestTrade_Deltas(t *testing.T) {
	buy := &Trade{Side: SideBuy, Quantity: d("10"), TotalPrice: d("1500")}
	assert.True(t, d("-1500").Equal(buy.WalletDelta()))
	assert.True(t, d("10").Equal(buy.HoldingDelta()))

	sell := &Trade{Side: SideSell, Quantity: d("10"), TotalPrice: d("1500")}
	assert.True(t, d("1500").Equal(sell.WalletDelta()))
	assert.True(t, d("-10").Equal(sell.HoldingDelta()))
}

func TestTrade_CheckFields(t *testing.T) {
	valid := func() *Trade {
		return &Trade{
			Side:         SideBuy,
			Type:         OrderTypeLimit,
			Quantity:     d("10"),
			UnitPrice:    d("150.00"),
			ExchangeRate: d("1"),
		}
	}

	tests := []struct {
		name   string
		mutate func(*Trade)
		want   error
	}{
		{"valid", func(*Trade) {}, nil},
		{"zero quantity", func(t *Trade) { t.Quantity = decimal.Zero }, ErrNonPositiveQuantity},
		{"negative quantity", func(t *Trade) { t.Quantity = d("-1") }, ErrNonPositiveQuantity},
		{"price below minimum", func(t *Trade) { t.UnitPrice = d("0.009") }, ErrUnitPriceTooLow},
		{"rate below minimum", func(t *Trade) { t.ExchangeRate = d("0") }, ErrExchangeRateTooLow},
		{"three decimals", func(t *Trade) { t.Quantity = d("1.005") }, ErrTooManyDecimals},
		{"bad side", func(t *Trade) { t.Side = 7 }, ErrInvalidSide},
		{"bad type", func(t *Trade) { t.Type = 9 }, ErrInvalidOrderType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := valid()
			tt.mutate(tr)
			assert.ErrorIs(t, tr.CheckFields(), tt.want)
		})
	}
}

func TestWallet_Balance(t *testing.T) {
	w := NewWallet(7, time.Now())
	assert.True(t, w.JPYBalance.IsZero())
	assert.True(t, w.USDBalance.IsZero())

	require.NoError(t, w.SetBalance(CurrencyJPY, d("5000")))
	bal, err := w.Balance(CurrencyJPY)
	require.NoError(t, err)
	assert.True(t, d("5000").Equal(bal))

	_, err = w.Balance("EUR")
	assert.Error(t, err)
	assert.Error(t, w.SetBalance("EUR", d("1")))
}

func TestWallet_CloneIsIndependent(t *testing.T) {
	w := NewWallet(7, time.Now())
	w.USDBalance = d("10")
	c := w.Clone()
	w.USDBalance = d("3")

	assert.True(t, d("10").Equal(c.USDBalance))
}

func TestHolding_Covers(t *testing.T) {
	h := NewHolding(1, 2, time.Now())
	h.Quantity = d("3")

	assert.True(t, h.Covers(d("3")))
	assert.False(t, h.Covers(d("5")))
}

func TestExecutionState_Transitions(t *testing.T) {
	e := NewExecution()
	for _, next := range []ExecutionState{
		StateValidated, StatePersisted, StateWalletApplied, StateHoldingsApplied, StateCommitted,
	} {
		require.NoError(t, e.Advance(next))
	}
	assert.True(t, e.State().IsTerminal())
	assert.Error(t, e.Advance(StateAborted), "committed is terminal")
}

func TestExecutionState_AbortFromAnyNonTerminal(t *testing.T) {
	for s := StateCreated; s < StateCommitted; s++ {
		assert.True(t, s.CanTransition(StateAborted), s.String())
	}

	e := NewExecution()
	require.NoError(t, e.Advance(StateValidated))
	require.NoError(t, e.Advance(StateAborted))
	assert.Equal(t, StateValidated, e.AbortedAt)
	assert.Equal(t, "aborted", e.State().String())
}

func TestExecutionState_NoSkipping(t *testing.T) {
	assert.False(t, StateCreated.CanTransition(StatePersisted))
	assert.False(t, StateWalletApplied.CanTransition(StateValidated))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodAll, p)

	p, err = ParsePeriod("1week")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeek, p)

	_, err = ParsePeriod("1year")
	assert.Error(t, err)
}

func TestPeriod_Since(t *testing.T) {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	since, ok := PeriodToday.Since(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), since)

	since, ok = PeriodWeek.Since(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), since)

	since, ok = PeriodMonth.Since(now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), since)

	_, ok = PeriodAll.Since(now)
	assert.False(t, ok)
}

func TestPriceSnapshot_Composition(t *testing.T) {
	s := PriceSnapshot{Quote: Quote{Symbol: "AAPL", Close: d("101.50")}, PreviousClose: d("100.00")}
	assert.Equal(t, "AAPL", s.Symbol)
	assert.True(t, d("1.50").Equal(s.Change()))
}

func TestParseSideAndOrderType(t *testing.T) {
	side, err := ParseSide("sell")
	require.NoError(t, err)
	assert.Equal(t, SideSell, side)
	assert.Equal(t, "sell", side.String())

	_, err = ParseSide("short")
	assert.ErrorIs(t, err, ErrInvalidSide)

	typ, err := ParseOrderType("market")
	require.NoError(t, err)
	assert.Equal(t, OrderTypeMarket, typ)

	_, err = ParseOrderType("stop")
	assert.ErrorIs(t, err, ErrInvalidOrderType)
}

func TestTradeStatus_String(t *testing.T) {
	assert.Equal(t, "completed", TradeStatusCompleted.String())
	assert.Equal(t, "status(1)", TradeStatus(1).String())
}
