package dto

// OrderRequest is the request body for placing or previewing an order.
// Amounts are decimal strings; unit_price is ignored for market orders.
type OrderRequest struct {
	TickerID           int64  `json:"ticker_id" binding:"required,gt=0"`
	Side               string `json:"side" binding:"required,oneof=buy sell"`
	OrderType          string `json:"order_type" binding:"required,oneof=limit market"`
	Quantity           string `json:"quantity" binding:"required,decimal_amount"`
	UnitPrice          string `json:"unit_price" binding:"required_if=OrderType limit,decimal_amount"`
	SettlementCurrency string `json:"settlement_currency" binding:"required,len=3,alpha"`
	ExchangeRate       string `json:"exchange_rate" binding:"decimal_amount"` // defaults to 1
}

// TradeListQuery is the query string of GET /api/v1/trades.
type TradeListQuery struct {
	Period string `form:"period"`
	Ticker string `form:"ticker" binding:"max=16"`
}

// OrderPageURI binds the symbol path parameter of the order page.
type OrderPageURI struct {
	Symbol string `uri:"symbol" binding:"required,ticker_symbol"`
}

// TradeResponse is a settled (or previewed) trade.
type TradeResponse struct {
	ID                 int64  `json:"id,omitempty"`
	TickerID           int64  `json:"ticker_id"`
	Ticker             string `json:"ticker,omitempty"`
	Brand              string `json:"brand,omitempty"`
	Side               string `json:"side"`
	OrderType          string `json:"order_type"`
	Quantity           string `json:"quantity"`
	UnitPrice          string `json:"unit_price"`
	TotalPrice         string `json:"total_price"`
	Currency           string `json:"currency"`
	SettlementCurrency string `json:"settlement_currency"`
	ExchangeRate       string `json:"exchange_rate"`
	Status             string `json:"status"`
	CreatedAt          string `json:"created_at,omitempty"`
}

// TradeListResponse wraps the trade history.
type TradeListResponse struct {
	Items  []TradeResponse `json:"items"`
	Total  int             `json:"total"`
	Period string          `json:"period"`
	Ticker string          `json:"ticker,omitempty"`
}

// QuoteResponse is the latest close of a symbol.
type QuoteResponse struct {
	Symbol        string `json:"symbol"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	AsOf          string `json:"as_of"`
}

// PriceBandResponse is the accepted limit price range.
type PriceBandResponse struct {
	Lower string `json:"lower"`
	Upper string `json:"upper"`
}

// OrderPageResponse is everything the order form shows.
type OrderPageResponse struct {
	TickerID   int64             `json:"ticker_id"`
	Ticker     string            `json:"ticker"`
	Brand      string            `json:"brand"`
	Currency   string            `json:"currency"`
	Quote      QuoteResponse     `json:"quote"`
	PriceBand  PriceBandResponse `json:"price_band"`
	JPYBalance string            `json:"jpy_balance"`
	USDBalance string            `json:"usd_balance"`
	Held       string            `json:"held"`
}
