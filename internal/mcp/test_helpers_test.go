package mcp

import (
	"context"
	"encoding/json"
	"time"

	"market-mcp/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubMarketService struct {
	series    []domain.SymbolBars
	prices    []domain.SymbolPrice
	summaries []domain.SymbolSummary
	err       error

	historyCalls int
	priceCalls   int
	summaryCalls int

	lastQuery   domain.MarketDataQuery
	lastSymbols []string
}

func (s *stubMarketService) GetHistory(ctx context.Context, query domain.MarketDataQuery) ([]domain.SymbolBars, error) {
	s.historyCalls++
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.SymbolBars(nil), s.series...), nil
}

func (s *stubMarketService) GetCurrentPrices(ctx context.Context, symbols []string) ([]domain.SymbolPrice, error) {
	s.priceCalls++
	s.lastSymbols = append([]string(nil), symbols...)
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.SymbolPrice(nil), s.prices...), nil
}

func (s *stubMarketService) GetSummaries(ctx context.Context, symbols []string) ([]domain.SymbolSummary, error) {
	s.summaryCalls++
	s.lastSymbols = append([]string(nil), symbols...)
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.SymbolSummary(nil), s.summaries...), nil
}

func testServer() (*sdkmcp.Server, *stubMarketService) {
	price := 53.2
	market := &stubMarketService{
		series: []domain.SymbolBars{{
			Symbol: "EBAY",
			Bars: []domain.PriceBar{{
				Open: 53.0, High: 53.8, Low: 52.5, Close: 53.2, Volume: 4200000,
				Timestamp: time.Unix(1718150400, 0).UTC(),
			}},
		}},
		prices: []domain.SymbolPrice{{Symbol: "EBAY", Price: 53.2}},
		summaries: []domain.SymbolSummary{{
			Symbol:  "EBAY",
			Summary: domain.MarketSummary{CurrentPrice: &price},
		}},
	}

	srv := NewServer(nil, market, ServerConfig{RequestTimeout: time.Second})
	return srv, market
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
