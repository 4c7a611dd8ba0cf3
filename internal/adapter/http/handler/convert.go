package handler

import (
	"time"

	"stock-trade-ledger/internal/adapter/http/dto"
	"stock-trade-ledger/internal/core/domain"
	"stock-trade-ledger/internal/core/ports"
)

// toTradeResponse converts a trade to its DTO. view, when set, adds the
// ticker symbol and brand.
func toTradeResponse(t *domain.Trade, view *domain.TradeView) dto.TradeResponse {
	resp := dto.TradeResponse{
		ID:                 t.ID,
		TickerID:           t.TickerID,
		Side:               t.Side.String(),
		OrderType:          t.Type.String(),
		Quantity:           t.Quantity.StringFixed(domain.PricePlaces),
		UnitPrice:          t.UnitPrice.StringFixed(domain.PricePlaces),
		TotalPrice:         t.TotalPrice.String(),
		Currency:           t.Currency.String(),
		SettlementCurrency: t.SettlementCurrency.String(),
		ExchangeRate:       t.ExchangeRate.StringFixed(domain.PricePlaces),
		Status:             t.Status.String(),
	}
	if !t.CreatedAt.IsZero() {
		resp.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	if view != nil {
		resp.Ticker = view.Symbol
		resp.Brand = view.Brand
	}
	return resp
}

func toOrderPageResponse(p *ports.OrderPage) dto.OrderPageResponse {
	lower, upper := domain.PriceBand(p.Quote.Close)
	resp := dto.OrderPageResponse{
		TickerID: p.Ticker.ID,
		Ticker:   p.Ticker.Symbol,
		Brand:    p.Ticker.Brand,
		Currency: p.Ticker.Currency.String(),
		Quote: dto.QuoteResponse{
			Symbol:        p.Quote.Symbol,
			Close:         p.Quote.Close.StringFixed(domain.PricePlaces),
			PreviousClose: p.Quote.PreviousClose.StringFixed(domain.PricePlaces),
			Change:        p.Quote.Change().StringFixed(domain.PricePlaces),
		},
		PriceBand: dto.PriceBandResponse{
			Lower: lower.StringFixed(domain.PricePlaces),
			Upper: upper.StringFixed(domain.PricePlaces),
		},
		JPYBalance: p.JPYBalance.String(),
		USDBalance: p.USDBalance.StringFixed(domain.PricePlaces),
		Held:       p.Held.String(),
	}
	if !p.Quote.AsOf.IsZero() {
		resp.Quote.AsOf = p.Quote.AsOf.Format(time.DateOnly)
	}
	return resp
}
