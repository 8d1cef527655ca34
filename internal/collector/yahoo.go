package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"

	"StockFetcher/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	baseURL    string
	httpClient HTTPClient
	now        func() time.Time
	// SymbolMap maps a user-facing symbol to the Yahoo ticker.
	SymbolMap map[string]string
}

// YahooOption configures a YahooFetcher.
type YahooOption func(*YahooFetcher)

// WithBaseURL overrides the chart API host.
func WithBaseURL(baseURL string) YahooOption {
	return func(f *YahooFetcher) { f.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c HTTPClient) YahooOption {
	return func(f *YahooFetcher) { f.httpClient = c }
}

// WithClock sets the time source used to compute the request window.
func WithClock(now func() time.Time) YahooOption {
	return func(f *YahooFetcher) { f.now = now }
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string, opts ...YahooOption) *YahooFetcher {
	f := &YahooFetcher{
		baseURL:    yahooBaseURL,
		httpClient: newHTTPClient(proxyURL),
		now:        time.Now,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol model.TickerSymbol) string {
	if mapped, ok := f.SymbolMap[string(symbol)]; ok {
		return mapped
	}
	return string(symbol)
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Prices are kept as json.Number so no precision is lost before conversion to decimal.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string `json:"currency"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				GMTOffset            int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*json.Number `json:"open"`
					High   []*json.Number `json:"high"`
					Low    []*json.Number `json:"low"`
					Close  []*json.Number `json:"close"`
					Volume []*json.Number `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars requests daily bars for the last lookbackDays calendar days.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol model.TickerSymbol, lookbackDays int) ([]model.Bar, error) {
	if lookbackDays <= 0 {
		return nil, ErrInvalidLookback
	}
	start, end := window(f.now(), lookbackDays)

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.baseURL, url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, providerErr(model.KindTransientIOFailure, symbol, "yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, providerErr(model.KindTransientIOFailure, symbol, "yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerErr(model.KindTransientIOFailure, symbol, "yahoo read body: %w", err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	if resp.StatusCode != http.StatusOK {
		kind := classifyStatus(resp.StatusCode)
		if decodeErr == nil && chart.Chart.Error != nil {
			if k, ok := classifyYahooError(chart.Chart.Error.Code); ok {
				kind = k
			}
			return nil, providerErr(kind, symbol, "yahoo: status %d: %s", resp.StatusCode, chart.Chart.Error.Description)
		}
		return nil, providerErr(kind, symbol, "yahoo: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, providerErr(model.KindTransientIOFailure, symbol, "yahoo decode: %w", decodeErr)
	}
	if chart.Chart.Error != nil {
		kind, ok := classifyYahooError(chart.Chart.Error.Code)
		if !ok {
			kind = model.KindTransientIOFailure
		}
		return nil, providerErr(kind, symbol, "yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return []model.Bar{}, nil
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return []model.Bar{}, nil
	}
	loc := exchangeLocation(result.Meta.ExchangeTimezoneName, result.Meta.GMTOffset)
	quote := result.Indicators.Quote[0]

	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		t := time.Unix(ts, 0).In(loc)
		bars = append(bars, model.Bar{
			Date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
			Open:   numberAt(quote.Open, i),
			High:   numberAt(quote.High, i),
			Low:    numberAt(quote.Low, i),
			Close:  numberAt(quote.Close, i),
			Volume: intAt(quote.Volume, i),
		})
	}
	return bars, nil
}

func classifyYahooError(code string) (model.ErrorKind, bool) {
	switch strings.ToLower(code) {
	case "not found":
		return model.KindNotFound, true
	case "bad request", "unprocessable entity":
		return model.KindInvalidSymbolFormat, true
	}
	return "", false
}

func exchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if gmtOffset != 0 {
		return time.FixedZone("", gmtOffset)
	}
	return time.UTC
}

func numberAt(values []*json.Number, i int) decimal.NullDecimal {
	if i >= len(values) {
		return decimal.NullDecimal{}
	}
	return toDecimal(values[i])
}

func intAt(values []*json.Number, i int) *int64 {
	if i >= len(values) {
		return nil
	}
	return toInt(values[i])
}

func toDecimal(n *json.Number) decimal.NullDecimal {
	if n == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// toInt accepts volumes encoded either as integers or as floats.
func toInt(n *json.Number) *int64 {
	if n == nil {
		return nil
	}
	if v, err := n.Int64(); err == nil {
		return &v
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil
	}
	v := d.IntPart()
	return &v
}
