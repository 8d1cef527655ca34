package exporter

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"StockFetcher/internal/model"
)

const (
	summarySheet = "Summary"
	maxSheetName = 31

	numFmtThousands = 3 // #,##0
	numFmtPrice     = 4 // #,##0.00
)

var (
	summaryHeader = []any{"Ticker", "Status", "Trading Days", "Highest Close", "Lowest Close", "Average Close", "Error"}
	barsHeader    = []any{"Date", "Open", "High", "Low", "Close", "Volume"}
)

// WriteXLSX exports res to a workbook at path: a Summary sheet with one row
// per report in batch order, then one sheet of daily bars per successful ticker.
func WriteXLSX(path string, res model.BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeSummary(f, styles, res); err != nil {
		return err
	}

	used := map[string]int{}
	for _, rep := range res.Reports {
		if !rep.OK() {
			continue
		}
		name := sheetName(string(rep.Symbol), used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
		if err := writeBars(f, styles, name, rep.Series); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	log.Printf("[INFO] exported %d report(s) to %s", len(res.Reports), path)
	return nil
}

type styleSet struct {
	header, price, thousands int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	if s.price, err = f.NewStyle(&excelize.Style{NumFmt: numFmtPrice}); err != nil {
		return s, fmt.Errorf("price style: %w", err)
	}
	if s.thousands, err = f.NewStyle(&excelize.Style{NumFmt: numFmtThousands}); err != nil {
		return s, fmt.Errorf("volume style: %w", err)
	}
	return s, nil
}

func writeSummary(f *excelize.File, st styleSet, res model.BatchResult) error {
	if err := writeHeader(f, st, summarySheet, summaryHeader); err != nil {
		return err
	}
	for i, rep := range res.Reports {
		row := []any{string(rep.Symbol), string(rep.Status)}
		if rep.OK() {
			row = append(row,
				rep.Stats.TradingDays,
				rep.Stats.HighestClose.InexactFloat64(),
				rep.Stats.LowestClose.InexactFloat64(),
				rep.Stats.AverageClose.InexactFloat64(),
			)
		} else {
			row = append(row, nil, nil, nil, nil, rep.Message)
		}
		if err := setRow(f, summarySheet, i+2, row); err != nil {
			return err
		}
	}
	if n := len(res.Reports); n > 0 {
		if err := f.SetCellStyle(summarySheet, "D2", fmt.Sprintf("F%d", n+1), st.price); err != nil {
			return fmt.Errorf("style summary: %w", err)
		}
	}
	return f.SetColWidth(summarySheet, "A", "F", 15)
}

func writeBars(f *excelize.File, st styleSet, sheet string, series model.PriceSeries) error {
	if err := writeHeader(f, st, sheet, barsHeader); err != nil {
		return err
	}
	for i, b := range series.Bars {
		row := []any{b.DateKey(), cellDecimal(b.Open), cellDecimal(b.High), cellDecimal(b.Low), cellDecimal(b.Close), nil}
		if b.Volume != nil {
			row[5] = *b.Volume
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	if n := len(series.Bars); n > 0 {
		if err := f.SetCellStyle(sheet, "B2", fmt.Sprintf("E%d", n+1), st.price); err != nil {
			return fmt.Errorf("style %s: %w", sheet, err)
		}
		if err := f.SetCellStyle(sheet, "F2", fmt.Sprintf("F%d", n+1), st.thousands); err != nil {
			return fmt.Errorf("style %s: %w", sheet, err)
		}
	}
	return f.SetColWidth(sheet, "A", "F", 14)
}

func writeHeader(f *excelize.File, st styleSet, sheet string, header []any) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", end, st.header)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// cellDecimal leaves missing values as blank cells.
func cellDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

// sheetName derives a unique, valid worksheet name from a ticker symbol.
func sheetName(symbol string, used map[string]int) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, symbol)
	if len(name) > maxSheetName-4 {
		name = name[:maxSheetName-4]
	}
	base := name
	for used[strings.ToLower(name)] > 0 || strings.EqualFold(name, summarySheet) {
		used[strings.ToLower(base)]++
		name = fmt.Sprintf("%s (%d)", base, used[strings.ToLower(base)])
	}
	used[strings.ToLower(name)]++
	return name
}
