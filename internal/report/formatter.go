package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"StockFetcher/internal/model"
)

const (
	lineWidth = 80
	notAvail  = "n/a"
	rowFormat = "%-12s%12s%12s%12s%12s%16s"
)

// Render formats a successful ticker into a fixed-width text block.
// The series must be non-empty.
func Render(symbol model.TickerSymbol, lookbackDays int, series model.PriceSeries, stats model.SummaryStatistics) string {
	var b strings.Builder
	rule := strings.Repeat("=", lineWidth)

	unit := "Days"
	if lookbackDays == 1 {
		unit = "Day"
	}
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("Historical Stock Prices for %s (Last %d %s)\n", symbol, lookbackDays, unit))
	b.WriteString(rule + "\n\n")

	b.WriteString("Summary Statistics:\n")
	b.WriteString(fmt.Sprintf("  Highest Close Price: %s\n", money(stats.HighestClose)))
	b.WriteString(fmt.Sprintf("  Lowest Close Price: %s\n", money(stats.LowestClose)))
	b.WriteString(fmt.Sprintf("  Average Close Price: %s\n", money(stats.AverageClose)))
	b.WriteString(fmt.Sprintf("  Trading Days: %d\n\n", stats.TradingDays))

	b.WriteString(fmt.Sprintf(rowFormat, "Date", "Open", "High", "Low", "Close", "Volume") + "\n")
	b.WriteString(strings.Repeat("-", lineWidth))
	for _, bar := range series.Bars {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(rowFormat,
			bar.DateKey(),
			nullMoney(bar.Open),
			nullMoney(bar.High),
			nullMoney(bar.Low),
			nullMoney(bar.Close),
			volume(bar.Volume),
		))
	}
	return b.String()
}

// RenderError formats a failed ticker as a single line.
func RenderError(symbol model.TickerSymbol, kind model.ErrorKind, message string) string {
	switch kind {
	case model.KindNotFound, model.KindNoUsableData:
		return fmt.Sprintf("Error: No data found for ticker '%s'. Please check the ticker symbol.", symbol)
	default:
		return "Error: " + message
	}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func nullMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return notAvail
	}
	return money(d.Decimal)
}

func volume(v *int64) string {
	if v == nil {
		return notAvail
	}
	return humanize.Comma(*v)
}
