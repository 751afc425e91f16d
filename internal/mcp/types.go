package mcp

import (
	"encoding/json"
	"strings"
	"time"

	"market-mcp/internal/domain"
)

const (
	dateLayout        = "2006-01-02"
	defaultWindowDays = 30
)

// SymbolList accepts either a single symbol string or an array of symbols, the two
// shapes callers are allowed to send.
type SymbolList []string

func (s *SymbolList) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*s = SymbolList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = SymbolList(many)
	return nil
}

type marketDataInput struct {
	Symbols   SymbolList `json:"symbols"`
	StartDate string     `json:"start_date,omitempty"`
	EndDate   string     `json:"end_date,omitempty"`
	Interval  string     `json:"interval,omitempty"`
}

type marketDataOutput struct {
	Series []domain.SymbolBars `json:"series"`
}

type currentPriceInput struct {
	Symbols SymbolList `json:"symbols"`
}

type currentPriceOutput struct {
	Prices []domain.SymbolPrice `json:"prices"`
}

type marketSummaryInput struct {
	Symbols []string `json:"symbols" jsonschema:"list of ticker symbols"`
}

type marketSummaryOutput struct {
	Summaries []domain.SymbolSummary `json:"summaries"`
}

func normalizeSymbols(symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return nil, &domain.ValidationError{Field: "symbols", Reason: "at least one symbol is required"}
	}
	out := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			return nil, &domain.ValidationError{Field: "symbols", Reason: "symbol must not be empty"}
		}
		out = append(out, symbol)
	}
	return out, nil
}

func normalizeInterval(raw string) (domain.Interval, error) {
	return domain.ParseInterval(strings.TrimSpace(raw))
}

// normalizeDateRange fills each missing bound independently with the trailing
// 30-day window ending at now. Dates are naive calendar dates.
func normalizeDateRange(startRaw, endRaw string, now time.Time) (time.Time, time.Time, error) {
	today := truncateToDay(now)

	start := today.AddDate(0, 0, -defaultWindowDays)
	if raw := strings.TrimSpace(startRaw); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, &domain.ValidationError{Field: "start_date", Reason: "must be YYYY-MM-DD"}
		}
		start = parsed
	}

	end := today
	if raw := strings.TrimSpace(endRaw); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			return time.Time{}, time.Time{}, &domain.ValidationError{Field: "end_date", Reason: "must be YYYY-MM-DD"}
		}
		end = parsed
	}

	return start, end, nil
}

// normalizeQuery turns loosely-typed tool input into a fully-specified query. Pure
// and deterministic given now; already-complete input passes through unchanged.
func normalizeQuery(in marketDataInput, now time.Time) (domain.MarketDataQuery, error) {
	symbols, err := normalizeSymbols(in.Symbols)
	if err != nil {
		return domain.MarketDataQuery{}, err
	}
	interval, err := normalizeInterval(in.Interval)
	if err != nil {
		return domain.MarketDataQuery{}, err
	}
	start, end, err := normalizeDateRange(in.StartDate, in.EndDate, now)
	if err != nil {
		return domain.MarketDataQuery{}, err
	}

	return domain.MarketDataQuery{
		Symbols:  symbols,
		Start:    start,
		End:      end,
		Interval: interval,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
