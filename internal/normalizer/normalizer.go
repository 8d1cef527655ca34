package normalizer

import (
	"fmt"
	"sort"

	"StockFetcher/internal/model"
)

// DataError is returned when the provider rows cannot form a usable series.
type DataError struct {
	Kind   model.ErrorKind
	Symbol model.TickerSymbol
}

func (e *DataError) Error() string {
	return fmt.Sprintf("no usable data for ticker '%s'", e.Symbol)
}

// Normalize turns raw provider rows into a PriceSeries: ascending by date,
// rows without a close dropped, one row per calendar date (first occurrence
// in provider order wins). Zero remaining rows yields a NoUsableData error.
func Normalize(symbol model.TickerSymbol, raw []model.Bar) (model.PriceSeries, error) {
	bars := make([]model.Bar, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, b := range raw {
		if !b.Close.Valid {
			continue
		}
		key := b.DateKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return model.PriceSeries{Symbol: symbol}, &DataError{Kind: model.KindNoUsableData, Symbol: symbol}
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return model.PriceSeries{Symbol: symbol, Bars: bars}, nil
}
