package mcp

import (
	"context"

	"market-mcp/internal/domain"
)

// MarketReader exposes the market-data lookups behind the tools. Results come back
// as ordered per-symbol entries in input order.
type MarketReader interface {
	GetHistory(ctx context.Context, query domain.MarketDataQuery) ([]domain.SymbolBars, error)
	GetCurrentPrices(ctx context.Context, symbols []string) ([]domain.SymbolPrice, error)
	GetSummaries(ctx context.Context, symbols []string) ([]domain.SymbolSummary, error)
}
