package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-trade-ledger/internal/core/domain"
	"stock-trade-ledger/internal/core/ports"
	"stock-trade-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// QuoteServiceImpl implements ports.QuoteService: oracle reads fronted by a
// cache that expires at the daily refresh hour.
type QuoteServiceImpl struct {
	oracle      ports.PriceOracle
	cache       ports.QuoteCache
	refreshHour int
	log         zerolog.Logger
	now         func() time.Time
}

// NewQuoteService creates a new QuoteServiceImpl. cache may be nil.
func NewQuoteService(oracle ports.PriceOracle, cache ports.QuoteCache, refreshHour int, log zerolog.Logger) *QuoteServiceImpl {
	return &QuoteServiceImpl{
		oracle:      oracle,
		cache:       cache,
		refreshHour: refreshHour,
		log:         log,
		now:         time.Now,
	}
}

// Latest returns the price snapshot for symbol. Any oracle failure is
// reported as PriceUnavailable; cache failures only degrade to the oracle.
func (s *QuoteServiceImpl) Latest(ctx context.Context, symbol string) (*domain.PriceSnapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("quote cache read failed, falling through to oracle")
		}
		if cached != nil {
			return cached, nil
		}
	}

	snap, err := s.oracle.LatestClose(ctx, symbol)
	if err != nil {
		return nil, apperror.ErrPriceUnavailable(fmt.Errorf("latest close %s: %w", symbol, err))
	}
	if snap == nil || !snap.Close.IsPositive() {
		return nil, apperror.ErrPriceUnavailable(fmt.Errorf("no close price for %s", symbol))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap, untilRefresh(s.now(), s.refreshHour)); err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to cache quote")
		}
	}
	return snap, nil
}

// untilRefresh returns the time left until the next refreshHour:00 in
// now's location.
func untilRefresh(now time.Time, refreshHour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), refreshHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
