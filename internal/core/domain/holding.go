package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the quantity of one instrument held by one user.
type Holding struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	TickerID  int64           `json:"ticker_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewHolding returns an unsaved, empty holding.
func NewHolding(userID, tickerID int64, now time.Time) *Holding {
	return &Holding{
		UserID:    userID,
		TickerID:  tickerID,
		Quantity:  decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Covers reports whether the holding can fund a sell of qty.
func (h *Holding) Covers(qty decimal.Decimal) bool {
	return h.Quantity.GreaterThanOrEqual(qty)
}
