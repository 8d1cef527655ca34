package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"StockFetcher/internal/model"
)

// ErrInvalidLookback is returned when the lookback window is not positive.
var ErrInvalidLookback = errors.New("lookback days must be positive")

// Fetcher retrieves daily bars for one symbol over the last lookbackDays
// calendar days. An empty slice with a nil error means the provider had no rows.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol model.TickerSymbol, lookbackDays int) ([]model.Bar, error)
	Name() string
}

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=collector_test -destination=mock_http_client_test.go -source=fetcher.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ProviderError is returned when the provider call itself could not be completed.
type ProviderError struct {
	Kind   model.ErrorKind
	Symbol model.TickerSymbol
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(kind model.ErrorKind, symbol model.TickerSymbol, format string, args ...any) *ProviderError {
	return &ProviderError{Kind: kind, Symbol: symbol, Err: fmt.Errorf(format, args...)}
}

// classifyStatus maps a non-200 HTTP status to an error kind.
func classifyStatus(code int) model.ErrorKind {
	switch code {
	case http.StatusNotFound:
		return model.KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return model.KindInvalidSymbolFormat
	default:
		return model.KindTransientIOFailure
	}
}

// window returns the [start, end] range covering the last lookbackDays calendar days.
func window(now time.Time, lookbackDays int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -lookbackDays), now
}

// newHTTPClient builds a client without an overall request timeout; only the
// connection-level phases are bounded.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Transport: transport}
}
