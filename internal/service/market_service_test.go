package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"market-mcp/internal/domain"
	"market-mcp/internal/provider"

	"go.opentelemetry.io/otel/trace/noop"
)

type stubProvider struct {
	bars       map[string][]provider.RawBar
	quotes     map[string]provider.RawQuote
	failFetch  map[string]error
	histCalls  []string
	quoteCalls []string
}

func (p *stubProvider) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) ([]provider.RawBar, error) {
	p.histCalls = append(p.histCalls, symbol)
	if err, ok := p.failFetch[symbol]; ok {
		return nil, err
	}
	return p.bars[symbol], nil
}

func (p *stubProvider) FetchQuote(ctx context.Context, symbol string) (provider.RawQuote, error) {
	p.quoteCalls = append(p.quoteCalls, symbol)
	if err, ok := p.failFetch[symbol]; ok {
		return nil, err
	}
	quote, ok := p.quotes[symbol]
	if !ok {
		return nil, &domain.ProviderError{Symbol: symbol, Err: errors.New("unknown symbol")}
	}
	return quote, nil
}

func testService(p *stubProvider) *MarketService {
	return NewMarketService(noop.NewTracerProvider().Tracer("test"), p)
}

func testQuery(symbols ...string) domain.MarketDataQuery {
	return domain.MarketDataQuery{
		Symbols:  symbols,
		Start:    time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Interval: domain.Interval1Day,
	}
}

func TestGetHistoryPreservesInputOrder(t *testing.T) {
	p := &stubProvider{bars: map[string][]provider.RawBar{
		"AAA": {{Timestamp: 1, Close: 1}},
		"BBB": {{Timestamp: 2, Close: 2}},
		"CCC": {{Timestamp: 3, Close: 3}},
	}}

	result, err := testService(p).GetHistory(context.Background(), testQuery("AAA", "BBB", "CCC"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result))
	}
	for i, want := range []string{"AAA", "BBB", "CCC"} {
		if result[i].Symbol != want {
			t.Fatalf("expected entry %d to be %s, got %s", i, want, result[i].Symbol)
		}
	}
}

func TestGetHistoryFailsWholeCallOnFirstSymbolFault(t *testing.T) {
	p := &stubProvider{
		bars:      map[string][]provider.RawBar{"AAA": {{Timestamp: 1, Close: 1}}},
		failFetch: map[string]error{"BAD": &domain.ProviderError{Symbol: "BAD", Err: errors.New("status 404")}},
	}

	result, err := testService(p).GetHistory(context.Background(), testQuery("AAA", "BAD", "CCC"))
	if err == nil {
		t.Fatal("expected whole-call failure")
	}
	if result != nil {
		t.Fatal("expected no partial result alongside the error")
	}
	var perr *domain.ProviderError
	if !errors.As(err, &perr) || perr.Symbol != "BAD" {
		t.Fatalf("expected ProviderError for BAD, got %v", err)
	}
	// the loop stops at the failing symbol
	if len(p.histCalls) != 2 {
		t.Fatalf("expected 2 provider calls, got %d: %v", len(p.histCalls), p.histCalls)
	}
}

func TestGetHistoryZeroRowsIsValid(t *testing.T) {
	p := &stubProvider{bars: map[string][]provider.RawBar{"AAA": {}}}

	result, err := testService(p).GetHistory(context.Background(), testQuery("AAA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || len(result[0].Bars) != 0 {
		t.Fatalf("expected one entry with zero bars, got %+v", result)
	}
}

func TestGetHistoryShapesBars(t *testing.T) {
	p := &stubProvider{bars: map[string][]provider.RawBar{
		"AAA": {{Timestamp: 1718150400, Open: 12, High: 13, Low: 11.5, Close: 12.5, Volume: -5}},
	}}

	result, err := testService(p).GetHistory(context.Background(), testQuery("AAA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bar := result[0].Bars[0]
	if bar.Volume != 0 {
		t.Fatalf("expected negative volume coerced to 0, got %d", bar.Volume)
	}
	if !bar.Timestamp.Equal(time.Unix(1718150400, 0).UTC()) {
		t.Fatalf("unexpected timestamp: %v", bar.Timestamp)
	}
	if bar.Open != 12 || bar.Close != 12.5 {
		t.Fatalf("unexpected bar: %+v", bar)
	}
}

func TestGetCurrentPricesMissingPriceFails(t *testing.T) {
	p := &stubProvider{quotes: map[string]provider.RawQuote{
		"AAA": {"regularMarketPrice": 101.5},
		"BBB": {"previousClose": 50}, // responds, but no price field
	}}

	result, err := testService(p).GetCurrentPrices(context.Background(), []string{"AAA", "BBB"})
	if err == nil {
		t.Fatal("expected missing price to fail the call")
	}
	if result != nil {
		t.Fatal("expected no partial result")
	}
	var merr *domain.MissingFieldError
	if !errors.As(err, &merr) || merr.Symbol != "BBB" {
		t.Fatalf("expected MissingFieldError for BBB, got %v", err)
	}
}

func TestGetCurrentPrices(t *testing.T) {
	p := &stubProvider{quotes: map[string]provider.RawQuote{
		"AAA": {"regularMarketPrice": 101.5},
		"BBB": {"regularMarketPrice": 42.0},
	}}

	result, err := testService(p).GetCurrentPrices(context.Background(), []string{"AAA", "BBB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result[0].Symbol != "AAA" || result[0].Price != 101.5 {
		t.Fatalf("unexpected first entry: %+v", result[0])
	}
	if result[1].Symbol != "BBB" || result[1].Price != 42.0 {
		t.Fatalf("unexpected second entry: %+v", result[1])
	}
}

func TestGetSummariesToleratesAbsentFields(t *testing.T) {
	p := &stubProvider{quotes: map[string]provider.RawQuote{
		"AAA": {
			"regularMarketPrice": 101.5,
			"previousClose":      99.0,
			"volume":             1234567,
			// no marketCap, no forwardPE
		},
	}}

	result, err := testService(p).GetSummaries(context.Background(), []string{"AAA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary := result[0].Summary
	if summary.CurrentPrice == nil || *summary.CurrentPrice != 101.5 {
		t.Fatalf("expected current price populated, got %+v", summary.CurrentPrice)
	}
	if summary.Volume == nil || *summary.Volume != 1234567 {
		t.Fatalf("expected volume populated, got %+v", summary.Volume)
	}
	if summary.MarketCap != nil {
		t.Fatal("expected absent market cap to stay absent")
	}
	if summary.PERatio != nil {
		t.Fatal("expected absent pe ratio to stay absent")
	}
}

func TestGetSummariesProviderFaultFailsWholeCall(t *testing.T) {
	p := &stubProvider{quotes: map[string]provider.RawQuote{
		"AAA": {"regularMarketPrice": 101.5},
	}}

	_, err := testService(p).GetSummaries(context.Background(), []string{"AAA", "NOPE"})
	var perr *domain.ProviderError
	if !errors.As(err, &perr) || perr.Symbol != "NOPE" {
		t.Fatalf("expected ProviderError for NOPE, got %v", err)
	}
}
