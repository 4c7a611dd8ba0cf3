package redis

import (
	"context"
	"testing"
	"time"

	"stock-trade-ledger/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshot() *domain.PriceSnapshot {
	return &domain.PriceSnapshot{
		Quote: domain.Quote{
			Symbol: "AAPL",
			Close:  decimal.RequireFromString("101.50"),
			AsOf:   time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		PreviousClose: decimal.RequireFromString("100.00"),
	}
}

func TestQuoteCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	// Get before set => nil
	result, err := cache.Get(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Nil(t, result)

	require.NoError(t, cache.Set(ctx, newSnapshot(), time.Hour))

	result, err = cache.Get(ctx, "AAPL")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "AAPL", result.Symbol)
	assert.True(t, decimal.RequireFromString("101.50").Equal(result.Close))
	assert.True(t, decimal.RequireFromString("100.00").Equal(result.PreviousClose))
	assert.True(t, result.AsOf.Equal(newSnapshot().AsOf))

	// Key carries the prefix and TTL
	assert.True(t, s.Exists("quote:AAPL"))
	assert.Equal(t, time.Hour, s.TTL("quote:AAPL"))
}

func TestQuoteCache_Expires(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, newSnapshot(), time.Minute))
	s.FastForward(61 * time.Second)

	result, err := cache.Get(ctx, "AAPL")
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestQuoteCache_ZeroTTLIsNoop(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)

	require.NoError(t, cache.Set(context.Background(), newSnapshot(), 0))
	assert.False(t, s.Exists("quote:AAPL"))
}

func TestQuoteCache_CorruptEntry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)

	require.NoError(t, s.Set("quote:AAPL", "not-json"))

	_, err := cache.Get(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestQuoteCache_RedisDown(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	s.Close()

	_, err := cache.Get(context.Background(), "AAPL")
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), newSnapshot(), time.Minute))
}
