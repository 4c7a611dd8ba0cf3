package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stock-trade-ledger/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// QuoteCache implements ports.QuoteCache using Redis. Snapshots are stored
// as JSON under quote:<SYMBOL>.
type QuoteCache struct {
	client *goredis.Client
	prefix string
}

// NewQuoteCache creates a new Redis-backed quote cache.
func NewQuoteCache(client *goredis.Client) *QuoteCache {
	return &QuoteCache{
		client: client,
		prefix: "quote:",
	}
}

// Get returns the cached snapshot for symbol, or nil, nil on a miss.
func (c *QuoteCache) Get(ctx context.Context, symbol string) (*domain.PriceSnapshot, error) {
	val, err := c.client.Get(ctx, c.prefix+symbol).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis quote get: %w", err)
	}

	var snap domain.PriceSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("decode cached quote %s: %w", symbol, err)
	}
	return &snap, nil
}

// Set stores snap until ttl elapses. A non-positive ttl is a no-op.
func (c *QuoteCache) Set(ctx context.Context, snap *domain.PriceSnapshot, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	val, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode quote %s: %w", snap.Symbol, err)
	}
	if err := c.client.Set(ctx, c.prefix+snap.Symbol, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis quote set: %w", err)
	}
	return nil
}
