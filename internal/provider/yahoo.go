package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"market-mcp/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	defaultTimeout = 30 * time.Second

	// Yahoo rejects requests without a browser-looking User-Agent.
	userAgent = "Mozilla/5.0"
)

// RawBar is one unshapen chart row exactly as the provider reported it.
type RawBar struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// RawQuote maps provider field names to the scalar values the provider actually
// sent. Fields the provider omitted are simply not present.
type RawQuote map[string]float64

// Get looks a field up by provider name, reporting presence explicitly.
func (q RawQuote) Get(field string) (float64, bool) {
	v, ok := q[field]
	return v, ok
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	ProxyURL string
}

// Yahoo fetches market data over Yahoo Finance's public chart and quote endpoints.
// One instance is constructed at startup and shared across requests.
type Yahoo struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewYahoo(tracer trace.Tracer, cfg Config) *Yahoo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	return &Yahoo{
		client:  &http.Client{Timeout: timeout, Transport: transport},
		baseURL: baseURL,
		tracer:  tracer,
	}
}

// chartResponse is the shape of the v8 chart endpoint. Quote arrays use pointers
// because Yahoo emits nulls for non-trading periods.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]any `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// FetchHistory returns the raw chart rows for one symbol. Zero rows is a valid
// result (nothing traded in the window), not an error.
func (y *Yahoo) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval domain.Interval) ([]RawBar, error) {
	ctx, span := y.tracer.Start(ctx, "yahoo.fetch-history")
	span.SetAttributes(attribute.String("market.symbol", symbol))
	defer span.End()

	// period2 is exclusive; push it a day out so the end date stays inside the window.
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		y.baseURL, url.PathEscape(symbol), start.Unix(), end.AddDate(0, 0, 1).Unix(), interval.Provider())

	body, err := y.get(ctx, reqURL)
	if err != nil {
		return nil, &domain.ProviderError{Symbol: symbol, Err: err}
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, &domain.ProviderError{Symbol: symbol, Err: fmt.Errorf("decode chart: %w", err)}
	}
	if chart.Chart.Error != nil {
		return nil, &domain.ProviderError{Symbol: symbol, Err: fmt.Errorf("chart api: %s", chart.Chart.Error.Description)}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &domain.ProviderError{Symbol: symbol, Err: fmt.Errorf("empty chart result")}
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []RawBar{}, nil
	}

	quote := result.Indicators.Quote[0]
	bars := make([]RawBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := deref(quote.Open, i)
		h := deref(quote.High, i)
		l := deref(quote.Low, i)
		c := deref(quote.Close, i)
		if o == nil && h == nil && l == nil && c == nil {
			continue // null row, e.g. market holiday
		}
		bars = append(bars, RawBar{
			Timestamp: ts,
			Open:      orZero(o),
			High:      orZero(h),
			Low:       orZero(l),
			Close:     orZero(c),
			Volume:    orZero(deref(quote.Volume, i)),
		})
	}
	return bars, nil
}

// FetchQuote returns the scalar quote fields the provider sent for one symbol. An
// unknown symbol is a provider error; individual missing fields are not.
func (y *Yahoo) FetchQuote(ctx context.Context, symbol string) (RawQuote, error) {
	ctx, span := y.tracer.Start(ctx, "yahoo.fetch-quote")
	span.SetAttributes(attribute.String("market.symbol", symbol))
	defer span.End()

	reqURL := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", y.baseURL, url.QueryEscape(symbol))

	body, err := y.get(ctx, reqURL)
	if err != nil {
		return nil, &domain.ProviderError{Symbol: symbol, Err: err}
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.ProviderError{Symbol: symbol, Err: fmt.Errorf("decode quote: %w", err)}
	}
	if resp.QuoteResponse.Error != nil {
		return nil, &domain.ProviderError{Symbol: symbol, Err: fmt.Errorf("quote api: %s", resp.QuoteResponse.Error.Description)}
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, &domain.ProviderError{Symbol: symbol, Err: fmt.Errorf("unknown symbol")}
	}

	raw := resp.QuoteResponse.Result[0]
	quote := make(RawQuote, len(raw))
	for field, value := range raw {
		if n, ok := value.(float64); ok {
			quote[field] = n
		}
	}
	return quote, nil
}

func (y *Yahoo) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}
	return body, nil
}

func deref(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
