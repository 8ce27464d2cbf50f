package cli

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// csvListSep joins nested lists inside a single CSV cell. The cell is quoted
// by the encoder, so the separator survives re-parsing.
const csvListSep = ","

// encodeCSV writes a header line followed by one line per row. Every row is
// padded or cut to the header width so re-parsing always yields rectangular
// data.
func encodeCSV(header []string, rows [][]string) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(header); err != nil {
		return "", InternalError(fmt.Errorf("failed to write CSV header: %w", err))
	}
	for _, row := range rows {
		cells := make([]string, len(header))
		copy(cells, row)
		if err := w.Write(cells); err != nil {
			return "", InternalError(fmt.Errorf("failed to write CSV row: %w", err))
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", InternalError(fmt.Errorf("failed to flush CSV output: %w", err))
	}
	return sb.String(), nil
}

// recordCells flattens the values of record in key order.
func recordCells(record Record, keys []string) []string {
	cells := make([]string, len(keys))
	for i, k := range keys {
		if v, ok := record.Get(k); ok {
			cells[i] = formatCell(v, csvListSep)
		}
	}
	return cells
}
