package domain

import (
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	CurrencyJPY Currency = "JPY"
	CurrencyUSD Currency = "USD"
)

// roundingRule describes how settlement totals are rounded in a currency.
type roundingRule struct {
	places  int32
	ceiling bool
}

// settlementRules is the single source of per-currency behaviour. A currency
// is supported for settlement iff it has an entry here.
var settlementRules = map[Currency]roundingRule{
	CurrencyJPY: {places: 0, ceiling: true},
	CurrencyUSD: {places: 2},
}

var defaultRule = roundingRule{places: 2}

var (
	bandLowerFactor = decimal.RequireFromString("0.9")
	bandUpperFactor = decimal.RequireFromString("1.1")
)

// PricePlaces is the scale of unit prices, quantities and rates.
const PricePlaces int32 = 2

// SupportedCurrencies lists the settlement currencies in a stable order.
func SupportedCurrencies() []Currency {
	return []Currency{CurrencyJPY, CurrencyUSD}
}

// IsSupported reports whether c can be used as a settlement currency.
func (c Currency) IsSupported() bool {
	_, ok := settlementRules[c]
	return ok
}

func (c Currency) String() string { return string(c) }

// RoundSettlement applies the settlement rounding rule of c to amount.
// JPY rounds up to a whole yen; everything else rounds half-up to cents.
func RoundSettlement(amount decimal.Decimal, c Currency) decimal.Decimal {
	rule, ok := settlementRules[c]
	if !ok {
		rule = defaultRule
	}
	if rule.ceiling {
		return amount.RoundCeil(rule.places)
	}
	return amount.Round(rule.places)
}

// Settle computes the total price of an order in the settlement currency.
// The exchange rate is ignored when no conversion takes place.
func Settle(quantity, unitPrice, exchangeRate decimal.Decimal, tradeCurrency, settlementCurrency Currency) decimal.Decimal {
	rate := exchangeRate
	if tradeCurrency == settlementCurrency {
		rate = decimal.NewFromInt(1)
	}
	return RoundSettlement(quantity.Mul(unitPrice).Mul(rate), settlementCurrency)
}

// PriceBand returns the inclusive [lower, upper] corridor of acceptable unit
// prices around lastClose.
func PriceBand(lastClose decimal.Decimal) (lower, upper decimal.Decimal) {
	base := lastClose.Round(PricePlaces)
	return base.Mul(bandLowerFactor).Round(PricePlaces), base.Mul(bandUpperFactor).Round(PricePlaces)
}

// InPriceBand reports whether unitPrice lies within PriceBand(lastClose).
func InPriceBand(unitPrice, lastClose decimal.Decimal) bool {
	lower, upper := PriceBand(lastClose)
	return unitPrice.GreaterThanOrEqual(lower) && unitPrice.LessThanOrEqual(upper)
}

// MarketUnitPrice resolves the effective unit price of a market order: the
// top of the band for buys, the bottom for sells.
func MarketUnitPrice(side Side, lastClose decimal.Decimal) decimal.Decimal {
	if side == SideSell {
		return lastClose.Mul(bandLowerFactor).Round(PricePlaces)
	}
	return lastClose.Mul(bandUpperFactor).Round(PricePlaces)
}
