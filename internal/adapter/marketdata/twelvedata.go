package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stock-trade-ledger/config"
	"stock-trade-ledger/internal/core/domain"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	timeSeriesPath   = "/time_series"
	retryWaitTime    = 500 * time.Millisecond
	retryMaxWaitTime = 5 * time.Second
)

var (
	// ErrNoValues is returned when the time series carries no candles.
	ErrNoValues = errors.New("twelvedata: empty time series")
)

// timeSeriesResponse is the subset of the /time_series payload we read.
// Error payloads share the same envelope with status "error".
type timeSeriesResponse struct {
	Status  string       `json:"status"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Values  []candleJSON `json:"values"`
}

// Numbers arrive as strings.
type candleJSON struct {
	Datetime string `json:"datetime"`
	Close    string `json:"close"`
}

// Client implements ports.PriceOracle against the Twelve Data REST API.
type Client struct {
	client   *resty.Client
	apiKey   string
	interval string
	log      zerolog.Logger
}

// NewClient builds a Twelve Data client. Transport errors, 429 and 5xx
// responses are retried up to cfg.RetryCount times.
func NewClient(cfg config.MarketDataConfig, log zerolog.Logger) *Client {
	interval := cfg.Interval
	if interval == "" {
		interval = "1day"
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp != nil && resp.StatusCode() == http.StatusTooManyRequests {
				if s := resp.Header().Get("Retry-After"); s != "" {
					if secs, err := strconv.Atoi(s); err == nil {
						return time.Duration(secs) * time.Second, nil
					}
				}
			}
			return 0, nil
		})

	return &Client{
		client:   rc,
		apiKey:   cfg.APIKey,
		interval: interval,
		log:      log,
	}
}

// LatestClose fetches the two most recent candles for symbol. The newest
// close becomes Close; the one before it PreviousClose, which stays zero
// when only one candle is returned.
func (c *Client) LatestClose(ctx context.Context, symbol string) (*domain.PriceSnapshot, error) {
	var out timeSeriesResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     symbol,
			"interval":   c.interval,
			"outputsize": "2",
			"apikey":     c.apiKey,
		}).
		SetResult(&out).
		Get(timeSeriesPath)
	if err != nil {
		return nil, fmt.Errorf("twelvedata request %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("twelvedata %s: unexpected status %d", symbol, resp.StatusCode())
	}
	if strings.EqualFold(out.Status, "error") {
		return nil, fmt.Errorf("twelvedata %s: api error %d: %s", symbol, out.Code, out.Message)
	}
	if len(out.Values) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoValues, symbol)
	}

	latest := out.Values[0]
	closePrice, err := decimal.NewFromString(latest.Close)
	if err != nil {
		return nil, fmt.Errorf("twelvedata %s: parse close %q: %w", symbol, latest.Close, err)
	}
	asOf, err := parseDatetime(latest.Datetime)
	if err != nil {
		return nil, fmt.Errorf("twelvedata %s: %w", symbol, err)
	}

	prev := decimal.Zero
	if len(out.Values) > 1 {
		prev, err = decimal.NewFromString(out.Values[1].Close)
		if err != nil {
			return nil, fmt.Errorf("twelvedata %s: parse previous close %q: %w", symbol, out.Values[1].Close, err)
		}
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("close", closePrice.String()).
		Time("as_of", asOf).
		Msg("fetched latest close")

	return &domain.PriceSnapshot{
		Quote: domain.Quote{
			Symbol: symbol,
			Close:  closePrice,
			AsOf:   asOf,
		},
		PreviousClose: prev,
	}, nil
}

var datetimeLayouts = []string{time.DateOnly, time.DateTime}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse datetime %q", s)
}
