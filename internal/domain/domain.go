package domain

import "time"

// Interval is the sampling granularity of historical price bars. The value set is
// closed; anything outside it is rejected at the normalization boundary.
type Interval string

const (
	Interval1Min   Interval = "1m"
	Interval5Min   Interval = "5m"
	Interval15Min  Interval = "15m"
	Interval1Hour  Interval = "1h"
	Interval1Day   Interval = "1d"
	Interval1Week  Interval = "1wk"
	Interval1Month Interval = "1mo"
)

var SupportedIntervals = []Interval{
	Interval1Min,
	Interval5Min,
	Interval15Min,
	Interval1Hour,
	Interval1Day,
	Interval1Week,
	Interval1Month,
}

func (i Interval) IsValid() bool {
	for _, supported := range SupportedIntervals {
		if i == supported {
			return true
		}
	}
	return false
}

// Provider returns the interval string understood by the data provider. Yahoo's
// vocabulary happens to match ours, but callers must not rely on that.
func (i Interval) Provider() string {
	return string(i)
}

// ParseInterval validates a raw interval string. Empty defaults to one day.
func ParseInterval(raw string) (Interval, error) {
	if raw == "" {
		return Interval1Day, nil
	}
	iv := Interval(raw)
	if !iv.IsValid() {
		return "", &ValidationError{Field: "interval", Reason: "unsupported interval: " + raw}
	}
	return iv, nil
}

// MarketDataQuery is a fully-normalized history request: no optional fields remain.
type MarketDataQuery struct {
	Symbols  []string
	Start    time.Time
	End      time.Time
	Interval Interval
}

// PriceBar is one OHLCV row. Timestamp is the bar's period start as reported by the
// provider; bars keep provider order and are never re-sorted.
type PriceBar struct {
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// MarketSummary carries the quote fields the provider chose to send. Every field is
// independently optional; absent means the provider omitted it, never zero.
type MarketSummary struct {
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	Open          *float64 `json:"open,omitempty"`
	DayHigh       *float64 `json:"day_high,omitempty"`
	DayLow        *float64 `json:"day_low,omitempty"`
	Volume        *int64   `json:"volume,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	Week52High    *float64 `json:"week_52_high,omitempty"`
	Week52Low     *float64 `json:"week_52_low,omitempty"`
}

// SymbolBars, SymbolPrice, and SymbolSummary are the per-symbol result entries. A
// tool result is a slice of these in input symbol order, which is how an
// order-preserving symbol mapping survives JSON encoding.
type SymbolBars struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

type SymbolPrice struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

type SymbolSummary struct {
	Symbol  string        `json:"symbol"`
	Summary MarketSummary `json:"summary"`
}
