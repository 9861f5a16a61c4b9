// Package export serializes the ledger and summary to flat CSV text.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/domain"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/metrics"
)

// ErrEmpty is returned when there are no rows to export.
var ErrEmpty = errors.New("nothing to export")

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// TransactionHeader lists the exported transaction fields in column order.
var TransactionHeader = []string{"id", "date", "amount", "description", "category", "type", "source"}

// SummaryHeader lists the exported summary columns.
var SummaryHeader = []string{"Metric", "Value"}

// Transactions builds the transaction table in ledger order.
func Transactions(txs []domain.Transaction) Table {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.ID,
			tx.Date.String(),
			strconv.FormatFloat(tx.Amount, 'f', -1, 64),
			tx.Description,
			string(tx.Category),
			string(tx.Type),
			string(tx.Source),
		})
	}
	return Table{Header: TransactionHeader, Rows: rows}
}

// Summary builds the metric/value table of a summary.
func Summary(s metrics.FinancialSummary) Table {
	pairs := metrics.SummaryRows(s)
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	return Table{Header: SummaryHeader, Rows: rows}
}

// WriteCSV writes the header as plain names and every value double-quoted
// with inner quotes doubled. Rows are separated by "\n" with no trailing newline.
func WriteCSV(w io.Writer, t Table) error {
	if len(t.Rows) == 0 {
		return ErrEmpty
	}
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(t.Header, ","))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}

// Filename is base_YYYY-MM-DD.csv.
func Filename(base string, today civil.Date) string {
	return fmt.Sprintf("%s_%s.csv", base, today.String())
}

// WriteFile writes t to dir/Filename(base, today) and returns the path.
// An empty table creates no file.
func WriteFile(dir, base string, today civil.Date, t Table) (string, error) {
	if len(t.Rows) == 0 {
		return "", ErrEmpty
	}
	path := filepath.Join(dir, Filename(base, today))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("WriteFile: %w", err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("WriteFile: close: %w", err)
	}
	return path, nil
}
