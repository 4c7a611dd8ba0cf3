package service

import (
	"fmt"

	"stock-trade-ledger/internal/core/domain"
	"stock-trade-ledger/internal/core/ports"
	"stock-trade-ledger/pkg/apperror"
)

// OrderValidator implements ports.OrderValidator. It holds no state and
// never reads storage; every check runs against the supplied snapshot.
type OrderValidator struct{}

// NewOrderValidator creates a new OrderValidator.
func NewOrderValidator() *OrderValidator {
	return &OrderValidator{}
}

// Validate runs, in order: price band, balance (buy), holdings (sell),
// settlement currency. The first failing check is returned.
func (v *OrderValidator) Validate(trade *domain.Trade, snap ports.Snapshot) error {
	if !domain.InPriceBand(trade.UnitPrice, snap.LastClose) {
		lower, upper := domain.PriceBand(snap.LastClose)
		return apperror.ErrPriceOutOfBand(lower.StringFixed(domain.PricePlaces), upper.StringFixed(domain.PricePlaces))
	}

	supported := trade.SettlementCurrency.IsSupported()

	switch trade.Side {
	case domain.SideBuy:
		// An unsupported currency has no balance to compare against; the
		// currency check below reports it.
		if supported {
			if snap.Wallet == nil {
				return apperror.InternalError(fmt.Errorf("validate buy: no wallet in snapshot"))
			}
			balance, err := snap.Wallet.Balance(trade.SettlementCurrency)
			if err != nil {
				return apperror.InternalError(err)
			}
			if balance.LessThan(trade.TotalPrice) {
				return apperror.ErrInsufficientBalance()
			}
		}
	case domain.SideSell:
		if snap.Holding == nil {
			return apperror.ErrNoSuchHolding()
		}
		if !snap.Holding.Covers(trade.Quantity) {
			return apperror.ErrInsufficientHoldings()
		}
	}

	if !supported {
		return apperror.ErrUnsupportedCurrency(trade.SettlementCurrency.String())
	}
	return nil
}
