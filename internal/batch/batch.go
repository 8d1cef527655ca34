package batch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"StockFetcher/internal/calculator"
	"StockFetcher/internal/collector"
	"StockFetcher/internal/model"
	"StockFetcher/internal/normalizer"
	"StockFetcher/internal/recorder"
	"StockFetcher/internal/report"
)

// Runner drives every requested ticker through fetch, normalize, summarize
// and render. A failing ticker never stops the rest of the batch.
type Runner struct {
	Fetcher       collector.Fetcher
	Recorder      recorder.Recorder
	DefaultTicker model.TickerSymbol
	LookbackDays  int
}

// NewRunner creates a Runner. A struct literal works as well: a nil Recorder
// disables run history and an empty DefaultTicker falls back to
// model.DefaultTicker.
func NewRunner(fetcher collector.Fetcher, rec recorder.Recorder, defaultTicker model.TickerSymbol, lookbackDays int) *Runner {
	return &Runner{
		Fetcher:       fetcher,
		Recorder:      rec,
		DefaultTicker: defaultTicker,
		LookbackDays:  lookbackDays,
	}
}

// Run processes tokens in order and returns exactly one report per
// non-empty token. With no non-empty tokens the default ticker is used.
func (r *Runner) Run(ctx context.Context, tokens []string) model.BatchResult {
	requested := r.requested(tokens)
	res := model.BatchResult{
		LookbackDays: r.LookbackDays,
		Reports:      make([]model.TickerReport, 0, len(requested)),
	}

	log.Printf("[INFO] batch start: %d ticker(s), lookback %d days, source %s", len(requested), r.LookbackDays, r.Fetcher.Name())
	for _, raw := range requested {
		res.Reports = append(res.Reports, r.runOne(ctx, raw))
	}
	log.Printf("[INFO] batch done: %d ok, %d failed", len(res.Reports)-res.Failures(), res.Failures())

	if r.Recorder != nil {
		if runID, err := r.Recorder.RecordBatch(&res); err != nil {
			log.Printf("[WARN] record batch: %v", err)
		} else if runID != "" {
			log.Printf("[INFO] batch recorded as run %s", runID)
		}
	}
	return res
}

func (r *Runner) requested(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		def := r.DefaultTicker
		if def == "" {
			def = model.DefaultTicker
		}
		out = append(out, string(def))
	}
	return out
}

func (r *Runner) runOne(ctx context.Context, raw string) model.TickerReport {
	symbol, err := model.ParseTicker(raw)
	if err != nil {
		return failure(model.TickerSymbol(strings.ToUpper(strings.TrimSpace(raw))), model.KindInvalidSymbolFormat, err.Error())
	}

	bars, err := r.Fetcher.FetchDailyBars(ctx, symbol, r.LookbackDays)
	if err != nil {
		kind := model.KindTransientIOFailure
		var perr *collector.ProviderError
		if errors.As(err, &perr) {
			kind = perr.Kind
			err = perr.Err
		}
		return failure(symbol, kind, fmt.Sprintf("could not fetch data for %s: %v", symbol, err))
	}

	series, err := normalizer.Normalize(symbol, bars)
	if err != nil {
		kind := model.KindNoUsableData
		var derr *normalizer.DataError
		if errors.As(err, &derr) {
			kind = derr.Kind
		}
		return failure(symbol, kind, err.Error())
	}

	stats := calculator.Summarize(series)
	log.Printf("[INFO] %s: %d trading days, close %s..%s", symbol, stats.TradingDays, stats.LowestClose.StringFixed(2), stats.HighestClose.StringFixed(2))
	return model.TickerReport{
		Symbol: symbol,
		Status: model.StatusSuccess,
		Series: series,
		Stats:  stats,
		Text:   report.Render(symbol, r.LookbackDays, series, stats),
	}
}

func failure(symbol model.TickerSymbol, kind model.ErrorKind, message string) model.TickerReport {
	log.Printf("[WARN] %s: %s: %s", symbol, kind, message)
	return model.TickerReport{
		Symbol:  symbol,
		Status:  model.StatusFailure,
		Kind:    kind,
		Message: message,
		Text:    report.RenderError(symbol, kind, message),
	}
}
