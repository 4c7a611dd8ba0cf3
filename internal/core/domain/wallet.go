package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the single per-user cash record holding a JPY and a USD balance.
type Wallet struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	JPYBalance decimal.Decimal `json:"jpy_balance"`
	USDBalance decimal.Decimal `json:"usd_balance"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewWallet returns an unsaved wallet with zero balances.
func NewWallet(userID int64, now time.Time) *Wallet {
	return &Wallet{
		UserID:     userID,
		JPYBalance: decimal.Zero,
		USDBalance: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Balance returns the balance held in c.
func (w *Wallet) Balance(c Currency) (decimal.Decimal, error) {
	switch c {
	case CurrencyJPY:
		return w.JPYBalance, nil
	case CurrencyUSD:
		return w.USDBalance, nil
	default:
		return decimal.Zero, fmt.Errorf("wallet has no %q balance", c)
	}
}

// SetBalance overwrites the balance held in c.
func (w *Wallet) SetBalance(c Currency, amount decimal.Decimal) error {
	switch c {
	case CurrencyJPY:
		w.JPYBalance = amount
	case CurrencyUSD:
		w.USDBalance = amount
	default:
		return fmt.Errorf("wallet has no %q balance", c)
	}
	return nil
}

// Clone returns a copy safe to keep while the original is mutated.
func (w *Wallet) Clone() *Wallet {
	c := *w
	return &c
}
