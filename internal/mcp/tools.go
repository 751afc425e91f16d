package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"market-mcp/internal/domain"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, market MarketReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_data",
		Description: "Fetch historical OHLCV bars for one or more symbols over a date range",
		InputSchema: marketDataSchema(),
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketDataInput) (*mcp.CallToolResult, marketDataOutput, error) {
		if market == nil {
			return nil, marketDataOutput{}, fmt.Errorf("market service unavailable")
		}
		query, err := normalizeQuery(in, time.Now())
		if err != nil {
			return nil, marketDataOutput{}, err
		}
		series, err := market.GetHistory(ctx, query)
		if err != nil {
			return nil, marketDataOutput{}, err
		}
		return nil, marketDataOutput{Series: series}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "current_price",
		Description: "Get the current market price for one or more symbols",
		InputSchema: symbolsOnlySchema(),
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in currentPriceInput) (*mcp.CallToolResult, currentPriceOutput, error) {
		if market == nil {
			return nil, currentPriceOutput{}, fmt.Errorf("market service unavailable")
		}
		symbols, err := normalizeSymbols(in.Symbols)
		if err != nil {
			return nil, currentPriceOutput{}, err
		}
		prices, err := market.GetCurrentPrices(ctx, symbols)
		if err != nil {
			return nil, currentPriceOutput{}, err
		}
		return nil, currentPriceOutput{Prices: prices}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_summary",
		Description: "Get a market summary (price, volume, basic metrics) for a list of symbols",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketSummaryInput) (*mcp.CallToolResult, marketSummaryOutput, error) {
		if market == nil {
			return nil, marketSummaryOutput{}, fmt.Errorf("market service unavailable")
		}
		symbols, err := normalizeSymbols(in.Symbols)
		if err != nil {
			return nil, marketSummaryOutput{}, err
		}
		summaries, err := market.GetSummaries(ctx, symbols)
		if err != nil {
			return nil, marketSummaryOutput{}, err
		}
		return nil, marketSummaryOutput{Summaries: summaries}, nil
	})
}

// symbolsSchema admits a single symbol string or an array of them; the inferred
// schema for SymbolList would only admit the array form.
func symbolsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "ticker symbol or list of ticker symbols",
		AnyOf: []*jsonschema.Schema{
			{Type: "string"},
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
	}
}

func symbolsOnlySchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{"symbols": symbolsSchema()},
		Required:   []string{"symbols"},
	}
}

func marketDataSchema() *jsonschema.Schema {
	intervals := make([]string, 0, len(domain.SupportedIntervals))
	for _, iv := range domain.SupportedIntervals {
		intervals = append(intervals, string(iv))
	}

	// interval is validated by normalization, not by the schema, so rejects
	// follow the same path as every other validation failure.
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"symbols":    symbolsSchema(),
			"start_date": {Type: "string", Description: "start date in YYYY-MM-DD format, defaults to 30 days ago"},
			"end_date":   {Type: "string", Description: "end date in YYYY-MM-DD format, defaults to today"},
			"interval":   {Type: "string", Description: "bar interval, one of " + strings.Join(intervals, ", ") + "; defaults to 1d"},
		},
		Required: []string{"symbols"},
	}
}
