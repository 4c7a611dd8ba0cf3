package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletLog is the append-only audit entry written once per (wallet, trade).
type WalletLog struct {
	ID            int64           `json:"id"`
	WalletID      int64           `json:"user_wallet_id"`
	TradeID       int64           `json:"trade_id"`
	Currency      Currency        `json:"currency"`
	BeforeBalance decimal.Decimal `json:"before_balance"`
	AfterBalance  decimal.Decimal `json:"after_balance"`
	ChangeAmount  decimal.Decimal `json:"change_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}
