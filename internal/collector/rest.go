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

	"StockFetcher/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted daily bars API.
type RESTFetcher struct {
	BaseURL string
	Client  HTTPClient
	Now     func() time.Time
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, proxyURL string) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  newHTTPClient(proxyURL),
		Now:     time.Now,
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bars API. Null numbers mean the
// field is absent.
type restBar struct {
	Timestamp int64        `json:"timestamp"`
	Open      *json.Number `json:"open"`
	High      *json.Number `json:"high"`
	Low       *json.Number `json:"low"`
	Close     *json.Number `json:"close"`
	Volume    *json.Number `json:"volume"`
}

// FetchDailyBars requests the bars between now-lookbackDays and now. Rows the
// server returns outside that window are dropped.
func (f *RESTFetcher) FetchDailyBars(ctx context.Context, symbol model.TickerSymbol, lookbackDays int) ([]model.Bar, error) {
	if lookbackDays <= 0 {
		return nil, ErrInvalidLookback
	}
	start, end := window(f.Now(), lookbackDays)

	q := url.Values{}
	q.Set("symbol", string(symbol))
	q.Set("from", strconv.FormatInt(start.Unix(), 10))
	q.Set("to", strconv.FormatInt(end.Unix(), 10))
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, providerErr(model.KindTransientIOFailure, symbol, "fetch bars: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, providerErr(model.KindTransientIOFailure, symbol, "fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, providerErr(classifyStatus(resp.StatusCode), symbol, "fetch bars: status %d, body: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rows []restBar
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, providerErr(model.KindTransientIOFailure, symbol, "decode bars: %w", err)
	}
	from, to := start.Unix(), end.Unix()
	bars := make([]model.Bar, 0, len(rows))
	for _, r := range rows {
		if r.Timestamp < from || r.Timestamp > to {
			continue
		}
		t := time.Unix(r.Timestamp, 0).UTC()
		bars = append(bars, model.Bar{
			Date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Open:   toDecimal(r.Open),
			High:   toDecimal(r.High),
			Low:    toDecimal(r.Low),
			Close:  toDecimal(r.Close),
			Volume: toInt(r.Volume),
		})
	}
	return bars, nil
}
