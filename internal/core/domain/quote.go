package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single close price for a symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Close  decimal.Decimal `json:"close"`
	AsOf   time.Time       `json:"as_of"`
}

// PriceSnapshot is the latest quote plus the close of the session before it.
type PriceSnapshot struct {
	Quote
	PreviousClose decimal.Decimal `json:"previous_close"`
}

// Change returns Close - PreviousClose.
func (p *PriceSnapshot) Change() decimal.Decimal {
	return p.Close.Sub(p.PreviousClose)
}
