package collector

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"StockFetcher/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Bars and Errs are keyed by symbol; symbols present in neither get generated
// bars around Price.
type MockFetcher struct {
	Price float64
	Bars  map[model.TickerSymbol][]model.Bar
	Errs  map[model.TickerSymbol]error
	Now   func() time.Time

	// Calls records every requested symbol in call order.
	Calls []model.TickerSymbol
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol model.TickerSymbol, lookbackDays int) ([]model.Bar, error) {
	m.Calls = append(m.Calls, symbol)
	if lookbackDays <= 0 {
		return nil, ErrInvalidLookback
	}
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return generateMockBars(m.Price, lookbackDays, now()), nil
}

// generateMockBars produces one bar per weekday in the window.
func generateMockBars(basePrice float64, days int, now time.Time) []model.Bar {
	if basePrice == 0 {
		basePrice = 100
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := decimal.NewFromFloat(basePrice * (1 + float64(len(bars)-days/2)*0.001)).Round(2)
		vol := int64(1000000 + 1000*len(bars))
		bars = append(bars, model.Bar{
			Date:   d,
			Open:   valid(p.Mul(decimal.RequireFromString("0.999")).Round(2)),
			High:   valid(p.Mul(decimal.RequireFromString("1.005")).Round(2)),
			Low:    valid(p.Mul(decimal.RequireFromString("0.995")).Round(2)),
			Close:  valid(p),
			Volume: &vol,
		})
	}
	return bars
}

func valid(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
