package recorder

import "StockFetcher/internal/model"

// Recorder persists the outcome of each batch run for later analysis.
// Recorded rows are never read back by the pipeline.
type Recorder interface {
	RecordBatch(res *model.BatchResult) (runID string, err error)
	Close() error
}
