package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents a single daily OHLCV row. Any field may be absent when the
// provider returned null for it.
type Bar struct {
	Date   time.Time
	Open   decimal.NullDecimal
	High   decimal.NullDecimal
	Low    decimal.NullDecimal
	Close  decimal.NullDecimal
	Volume *int64
}

// DateKey returns the calendar date of the bar in its own location.
func (b Bar) DateKey() string {
	return b.Date.Format("2006-01-02")
}

// PriceSeries holds the normalized daily bars for one symbol, ascending by
// date with one bar per date. Every bar has a close price.
type PriceSeries struct {
	Symbol TickerSymbol
	Bars   []Bar
}

// Len returns the number of trading days in the series.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the close prices in series order.
func (s PriceSeries) Closes() []decimal.Decimal {
	closes := make([]decimal.Decimal, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close.Decimal
	}
	return closes
}

// SummaryStatistics is derived from a non-empty PriceSeries.
// The zero value (TradingDays == 0) means no statistics are available.
type SummaryStatistics struct {
	HighestClose decimal.Decimal
	LowestClose  decimal.Decimal
	AverageClose decimal.Decimal
	TradingDays  int
}
