package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"market-mcp/internal/domain"
	"market-mcp/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

// Quote field names as the provider spells them.
const (
	fieldCurrentPrice  = "regularMarketPrice"
	fieldPreviousClose = "previousClose"
	fieldOpen          = "regularMarketOpen"
	fieldDayHigh       = "dayHigh"
	fieldDayLow        = "dayLow"
	fieldVolume        = "volume"
	fieldMarketCap     = "marketCap"
	fieldPERatio       = "forwardPE"
	fieldWeek52High    = "fiftyTwoWeekHigh"
	fieldWeek52Low     = "fiftyTwoWeekLow"
)

type MarketProvider interface {
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) ([]provider.RawBar, error)
	FetchQuote(ctx context.Context, symbol string) (provider.RawQuote, error)
}

// MarketService runs the per-symbol fetch loop and shapes raw provider output into
// typed results. Symbols are processed sequentially; the first symbol failure aborts
// the whole call and no partial result is returned.
type MarketService struct {
	tracer   trace.Tracer
	provider MarketProvider
}

func NewMarketService(tracer trace.Tracer, p MarketProvider) *MarketService {
	return &MarketService{tracer: tracer, provider: p}
}

func (s *MarketService) GetHistory(ctx context.Context, query domain.MarketDataQuery) ([]domain.SymbolBars, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-history")
	defer span.End()

	if s.provider == nil {
		return nil, fmt.Errorf("market provider is not configured")
	}

	result := make([]domain.SymbolBars, 0, len(query.Symbols))
	for _, symbol := range query.Symbols {
		raw, err := s.provider.FetchHistory(ctx, symbol, query.Start, query.End, query.Interval)
		if err != nil {
			log.Printf("Error fetching data for %s: %v", symbol, err)
			return nil, err
		}
		result = append(result, domain.SymbolBars{Symbol: symbol, Bars: shapeHistory(raw)})
		log.Printf("Successfully fetched data for %s", symbol)
	}
	return result, nil
}

func (s *MarketService) GetCurrentPrices(ctx context.Context, symbols []string) ([]domain.SymbolPrice, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-current-prices")
	defer span.End()

	if s.provider == nil {
		return nil, fmt.Errorf("market provider is not configured")
	}

	result := make([]domain.SymbolPrice, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := s.provider.FetchQuote(ctx, symbol)
		if err != nil {
			log.Printf("Error fetching current price for %s: %v", symbol, err)
			return nil, err
		}
		price, ok := quote.Get(fieldCurrentPrice)
		if !ok {
			err := &domain.MissingFieldError{Symbol: symbol, Field: fieldCurrentPrice}
			log.Printf("Error fetching current price for %s: %v", symbol, err)
			return nil, err
		}
		result = append(result, domain.SymbolPrice{Symbol: symbol, Price: price})
		log.Printf("Current price for %s: %v", symbol, price)
	}
	return result, nil
}

func (s *MarketService) GetSummaries(ctx context.Context, symbols []string) ([]domain.SymbolSummary, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-summaries")
	defer span.End()

	if s.provider == nil {
		return nil, fmt.Errorf("market provider is not configured")
	}

	result := make([]domain.SymbolSummary, 0, len(symbols))
	for _, symbol := range symbols {
		quote, err := s.provider.FetchQuote(ctx, symbol)
		if err != nil {
			log.Printf("Error generating market summary for %s: %v", symbol, err)
			return nil, err
		}
		result = append(result, domain.SymbolSummary{Symbol: symbol, Summary: shapeSummary(quote)})
		log.Printf("Generated market summary for %s", symbol)
	}
	return result, nil
}

// shapeHistory maps raw chart rows one-to-one into price bars: no reordering, no
// gap-filling, no de-duplication.
func shapeHistory(raw []provider.RawBar) []domain.PriceBar {
	bars := make([]domain.PriceBar, 0, len(raw))
	for _, row := range raw {
		volume := int64(row.Volume)
		if volume < 0 {
			volume = 0
		}
		bars = append(bars, domain.PriceBar{
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    volume,
			Timestamp: time.Unix(row.Timestamp, 0).UTC(),
		})
	}
	return bars
}

// shapeSummary copies each quote field independently; absent fields stay absent.
func shapeSummary(quote provider.RawQuote) domain.MarketSummary {
	return domain.MarketSummary{
		CurrentPrice:  floatField(quote, fieldCurrentPrice),
		PreviousClose: floatField(quote, fieldPreviousClose),
		Open:          floatField(quote, fieldOpen),
		DayHigh:       floatField(quote, fieldDayHigh),
		DayLow:        floatField(quote, fieldDayLow),
		Volume:        intField(quote, fieldVolume),
		MarketCap:     floatField(quote, fieldMarketCap),
		PERatio:       floatField(quote, fieldPERatio),
		Week52High:    floatField(quote, fieldWeek52High),
		Week52Low:     floatField(quote, fieldWeek52Low),
	}
}

func floatField(quote provider.RawQuote, field string) *float64 {
	if v, ok := quote.Get(field); ok {
		return &v
	}
	return nil
}

func intField(quote provider.RawQuote, field string) *int64 {
	if v, ok := quote.Get(field); ok {
		n := int64(v)
		return &n
	}
	return nil
}
