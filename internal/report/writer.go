package report

import (
	"fmt"
	"io"
	"strings"

	"StockFetcher/internal/model"
)

// WriteBatch writes every block of res in order, separated by one blank line
// and terminated by a newline.
func WriteBatch(w io.Writer, res model.BatchResult) error {
	_, err := io.WriteString(w, strings.Join(res.Blocks(), "\n\n")+"\n")
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
