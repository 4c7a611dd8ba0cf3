package domain

import (
	"fmt"
	"time"
)

// Period selects how far back trade history is searched.
type Period string

const (
	PeriodToday Period = "today"
	PeriodWeek  Period = "1week"
	PeriodMonth Period = "1month"
	PeriodAll   Period = "all"
)

// ParsePeriod accepts the empty string as PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodAll, nil
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Since returns the lower bound of the period relative to now. ok is false
// for PeriodAll.
func (p Period) Since(now time.Time) (since time.Time, ok bool) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodToday:
		return midnight, true
	case PeriodWeek:
		return midnight.AddDate(0, 0, -7), true
	case PeriodMonth:
		return midnight.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

// TradeFilter narrows a user's trade history.
type TradeFilter struct {
	UserID int64
	Since  *time.Time
	// Symbol is a case-insensitive substring of the ticker symbol.
	Symbol string
}

// TradeView is a trade joined with its ticker for history listings.
type TradeView struct {
	Trade
	Symbol string `json:"ticker"`
	Brand  string `json:"brand"`
}
