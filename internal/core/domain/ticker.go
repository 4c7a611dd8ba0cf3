package domain

// Ticker is a tradable instrument. Currency is its natural trading currency.
type Ticker struct {
	ID       int64    `json:"id"`
	Symbol   string   `json:"ticker"`
	Brand    string   `json:"brand"`
	Currency Currency `json:"currency"`
}
