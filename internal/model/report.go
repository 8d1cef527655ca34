package model

// ErrorKind classifies a per-ticker failure.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindTransientIOFailure  ErrorKind = "TRANSIENT_IO_FAILURE"
	KindInvalidSymbolFormat ErrorKind = "INVALID_SYMBOL_FORMAT"
	KindNoUsableData        ErrorKind = "NO_USABLE_DATA"
)

// ReportStatus tags a TickerReport as success or failure.
type ReportStatus string

const (
	StatusSuccess ReportStatus = "SUCCESS"
	StatusFailure ReportStatus = "FAILURE"
)

// TickerReport is the outcome for one requested ticker.
// Series and Stats are set only on success; Kind and Message only on failure.
type TickerReport struct {
	Symbol  TickerSymbol
	Status  ReportStatus
	Series  PriceSeries
	Stats   SummaryStatistics
	Kind    ErrorKind
	Message string
	Text    string // rendered block
}

// OK reports whether the ticker was processed successfully.
func (r TickerReport) OK() bool { return r.Status == StatusSuccess }

// BatchResult holds one TickerReport per requested ticker, in input order.
type BatchResult struct {
	LookbackDays int
	Reports      []TickerReport
}

// Blocks returns the rendered text of every report in order.
func (b BatchResult) Blocks() []string {
	out := make([]string, len(b.Reports))
	for i, r := range b.Reports {
		out[i] = r.Text
	}
	return out
}

// Failures counts the failed reports.
func (b BatchResult) Failures() int {
	n := 0
	for _, r := range b.Reports {
		if !r.OK() {
			n++
		}
	}
	return n
}
