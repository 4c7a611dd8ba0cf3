package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side is stored as 0 (buy) / 1 (sell).
type Side int16

const (
	SideBuy  Side = 0
	SideSell Side = 1
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// ParseSide maps "buy"/"sell" to a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	default:
		return 0, ErrInvalidSide
	}
}

// IsValid reports whether s is a known side.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType is stored as 0 (limit) / 1 (market).
type OrderType int16

const (
	OrderTypeLimit  OrderType = 0
	OrderTypeMarket OrderType = 1
)

func (o OrderType) String() string {
	switch o {
	case OrderTypeLimit:
		return "limit"
	case OrderTypeMarket:
		return "market"
	default:
		return "unknown"
	}
}

// ParseOrderType maps "limit"/"market" to an OrderType.
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "limit":
		return OrderTypeLimit, nil
	case "market":
		return OrderTypeMarket, nil
	default:
		return 0, ErrInvalidOrderType
	}
}

// IsValid reports whether o is a known order type.
func (o OrderType) IsValid() bool {
	return o == OrderTypeLimit || o == OrderTypeMarket
}

// TradeStatus mirrors the legacy status column.
type TradeStatus int16

// TradeStatusCompleted is the only status written: orders settle immediately.
const TradeStatusCompleted TradeStatus = 4

func (s TradeStatus) String() string {
	if s == TradeStatusCompleted {
		return "completed"
	}
	return fmt.Sprintf("status(%d)", int16(s))
}

var (
	minUnitPrice    = decimal.RequireFromString("0.01")
	minExchangeRate = decimal.RequireFromString("0.01")
)

var (
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	ErrUnitPriceTooLow     = errors.New("unit price must be at least 0.01")
	ErrExchangeRateTooLow  = errors.New("exchange rate must be at least 0.01")
	ErrTooManyDecimals     = errors.New("quantity, unit price and exchange rate allow at most 2 decimal places")
	ErrInvalidSide         = errors.New("side must be buy or sell")
	ErrInvalidOrderType    = errors.New("order type must be limit or market")
)

// Trade is a settled order. It is immutable once committed.
type Trade struct {
	ID                 int64           `json:"id"`
	UserID             int64           `json:"user_id"`
	TickerID           int64           `json:"ticker_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Currency           Currency        `json:"currency"`
	SettlementCurrency Currency        `json:"settlement_currency"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate"`
	Side               Side            `json:"side"`
	Type               OrderType       `json:"type"`
	Status             TradeStatus     `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// IsBuy reports whether the trade debits the wallet.
func (t *Trade) IsBuy() bool {
	return t.Side == SideBuy
}

// WalletDelta is the signed change the trade applies to the settlement
// balance: negative for buys, positive for sells.
func (t *Trade) WalletDelta() decimal.Decimal {
	if t.IsBuy() {
		return t.TotalPrice.Neg()
	}
	return t.TotalPrice
}

// HoldingDelta is the signed change the trade applies to the holding.
func (t *Trade) HoldingDelta() decimal.Decimal {
	if t.IsBuy() {
		return t.Quantity
	}
	return t.Quantity.Neg()
}

// CheckFields validates the shape of the order independent of any snapshot.
func (t *Trade) CheckFields() error {
	if !t.Side.IsValid() {
		return ErrInvalidSide
	}
	if !t.Type.IsValid() {
		return ErrInvalidOrderType
	}
	if !t.Quantity.IsPositive() {
		return ErrNonPositiveQuantity
	}
	if t.UnitPrice.LessThan(minUnitPrice) {
		return ErrUnitPriceTooLow
	}
	if t.ExchangeRate.LessThan(minExchangeRate) {
		return ErrExchangeRateTooLow
	}
	for _, d := range []decimal.Decimal{t.Quantity, t.UnitPrice, t.ExchangeRate} {
		if !d.Equal(d.Truncate(PricePlaces)) {
			return ErrTooManyDecimals
		}
	}
	return nil
}
