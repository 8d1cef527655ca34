package calculator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockFetcher/internal/model"
)

func seriesOf(closes ...string) model.PriceSeries {
	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	s := model.PriceSeries{Symbol: "TEST"}
	for i, c := range closes {
		s.Bars = append(s.Bars, model.Bar{
			Date:  base.AddDate(0, 0, i),
			Close: decimal.NullDecimal{Decimal: decimal.RequireFromString(c), Valid: true},
		})
	}
	return s
}

func TestSummarize_Basic(t *testing.T) {
	stats := Summarize(seriesOf("258.20", "275.25", "260.00", "261.10"))

	assert.Equal(t, "275.25", stats.HighestClose.StringFixed(2))
	assert.Equal(t, "258.20", stats.LowestClose.StringFixed(2))
	assert.Equal(t, "263.64", stats.AverageClose.StringFixed(2)) // 1054.55 / 4 = 263.6375
	assert.Equal(t, 4, stats.TradingDays)
}

func TestSummarize_SingleRow(t *testing.T) {
	stats := Summarize(seriesOf("123.456"))

	assert.True(t, stats.HighestClose.Equal(decimal.RequireFromString("123.456")))
	assert.True(t, stats.LowestClose.Equal(stats.HighestClose))
	assert.True(t, stats.AverageClose.Equal(stats.HighestClose))
	assert.Equal(t, 1, stats.TradingDays)
}

func TestSummarize_EmptySeries(t *testing.T) {
	stats := Summarize(model.PriceSeries{Symbol: "TEST"})
	assert.Zero(t, stats.TradingDays)
	assert.True(t, stats.AverageClose.IsZero())
}

func TestSummarize_NoIntermediateRounding(t *testing.T) {
	// Rounding each close to cents first would give 0.01; the exact mean is 0.015.
	stats := Summarize(seriesOf("0.014", "0.016"))
	assert.Equal(t, "0.015", stats.AverageClose.String())
}

func TestSummarize_HighAvgLowOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 1; n <= 50; n++ {
		closes := make([]string, n)
		for i := range closes {
			closes[i] = decimal.NewFromFloat(1 + rng.Float64()*500).Round(4).String()
		}
		stats := Summarize(seriesOf(closes...))

		require.Equal(t, n, stats.TradingDays)
		require.True(t, stats.HighestClose.GreaterThanOrEqual(stats.AverageClose), "n=%d", n)
		require.True(t, stats.AverageClose.GreaterThanOrEqual(stats.LowestClose), "n=%d", n)
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	s := seriesOf("10.10", "10.20", "10.35")
	assert.Equal(t, Summarize(s), Summarize(s))
}
