package collector_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockFetcher/internal/collector"
	"StockFetcher/internal/model"
)

func TestMockFetcher(t *testing.T) {
	boom := &collector.ProviderError{Kind: model.KindTransientIOFailure, Symbol: "ERR", Err: errors.New("boom")}
	m := &collector.MockFetcher{
		Price: 100,
		Bars:  map[model.TickerSymbol][]model.Bar{"EMPTY": {}},
		Errs:  map[model.TickerSymbol]error{"ERR": boom},
		Now:   func() time.Time { return fixedNow },
	}

	bars, err := m.FetchDailyBars(t.Context(), "AAPL", 14)
	require.NoError(t, err)
	// 14 calendar days ending on a Friday hold 10 weekdays
	assert.Len(t, bars, 10)
	for _, b := range bars {
		assert.True(t, b.Close.Valid)
		assert.NotEqual(t, time.Saturday, b.Date.Weekday())
		assert.NotEqual(t, time.Sunday, b.Date.Weekday())
	}

	bars, err = m.FetchDailyBars(t.Context(), "EMPTY", 14)
	require.NoError(t, err)
	assert.Empty(t, bars)

	_, err = m.FetchDailyBars(t.Context(), "ERR", 14)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []model.TickerSymbol{"AAPL", "EMPTY", "ERR"}, m.Calls)
}

func TestProviderError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := &collector.ProviderError{Kind: model.KindTransientIOFailure, Symbol: "AAPL", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "AAPL: dial tcp: timeout", err.Error())
}
