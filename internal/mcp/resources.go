package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"market-mcp/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, market MarketReader) {
	server.AddResource(&mcp.Resource{
		URI:         "market://supported-intervals",
		Name:        "supported-intervals",
		Description: "List of bar intervals supported by the service",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.SupportedIntervals)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "quote://{symbol}",
		Name:        "quote-by-symbol",
		Description: "Market summary for a specific symbol",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if market == nil {
			return nil, fmt.Errorf("market service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "quote" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		symbols, err := normalizeSymbols([]string{parsed.Host})
		if err != nil {
			return nil, err
		}
		summaries, err := market.GetSummaries(ctx, symbols)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, marketSummaryOutput{Summaries: summaries})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "history://{symbol}{?start,end,interval}",
		Name:        "history-by-symbol",
		Description: "Historical OHLCV bars for a symbol; optional start/end/interval query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if market == nil {
			return nil, fmt.Errorf("market service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "history" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		symbol := strings.TrimSpace(parsed.Host)
		if symbol == "" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		query, err := normalizeQuery(marketDataInput{
			Symbols:   SymbolList{symbol},
			StartDate: parsed.Query().Get("start"),
			EndDate:   parsed.Query().Get("end"),
			Interval:  parsed.Query().Get("interval"),
		}, time.Now())
		if err != nil {
			return nil, err
		}

		series, err := market.GetHistory(ctx, query)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, marketDataOutput{Series: series})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
