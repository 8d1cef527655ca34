package calculator

import (
	"github.com/shopspring/decimal"

	"StockFetcher/internal/model"
)

// Summarize computes the highest, lowest and average close over the series.
// Closes are summed at full precision and divided once by the trading day
// count. An empty series returns the zero value.
func Summarize(series model.PriceSeries) model.SummaryStatistics {
	closes := series.Closes()
	if len(closes) == 0 {
		return model.SummaryStatistics{}
	}

	high, low := closes[0], closes[0]
	sum := decimal.Zero
	for _, c := range closes {
		if c.GreaterThan(high) {
			high = c
		}
		if c.LessThan(low) {
			low = c
		}
		sum = sum.Add(c)
	}

	n := decimal.NewFromInt(int64(len(closes)))
	avg := sum.Div(n)
	// Div rounds to DivisionPrecision digits, so clamp into [low, high].
	if avg.GreaterThan(high) {
		avg = high
	}
	if avg.LessThan(low) {
		avg = low
	}

	return model.SummaryStatistics{
		HighestClose: high,
		LowestClose:  low,
		AverageClose: avg,
		TradingDays:  len(closes),
	}
}
