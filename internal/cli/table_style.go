package cli

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	pkgstrings "cloudctl/pkg/strings"
)

// PlainTableWriter renders kubectl-style plain tables without box-drawing
// characters, which keeps list output easy to grep, cut and copy.
type PlainTableWriter struct {
	headers      []string
	rows         [][]string
	columnWidths []int
	// minPadding is the minimum space between columns
	minPadding int
	theme      Theme
}

// NewPlainTableWriter creates a plain table writer. Header cells are rendered
// muted when the theme has color.
func NewPlainTableWriter(theme Theme) *PlainTableWriter {
	return &PlainTableWriter{
		minPadding: 3,
		theme:      theme,
	}
}

// SetHeaders sets the column headers for the table.
// Headers are displayed in uppercase.
func (w *PlainTableWriter) SetHeaders(headers []string) {
	w.headers = make([]string, len(headers))
	w.columnWidths = make([]int, len(headers))
	for i, h := range headers {
		upper := strings.ToUpper(h)
		w.headers[i] = upper
		w.columnWidths[i] = text.RuneWidthWithoutEscSequences(upper)
	}
}

// AppendRow adds a row to the table. Missing cells are left blank and extra
// cells are dropped. Cells are truncated to a single line.
func (w *PlainTableWriter) AppendRow(row []string) {
	normalizedRow := make([]string, len(w.headers))
	for i := range w.headers {
		if i >= len(row) {
			continue
		}
		cell := pkgstrings.TruncateCell(row[i], pkgstrings.DefaultCellMaxLen)
		normalizedRow[i] = cell
		if width := text.RuneWidthWithoutEscSequences(cell); width > w.columnWidths[i] {
			w.columnWidths[i] = width
		}
	}
	w.rows = append(w.rows, normalizedRow)
}

// Render returns the table as text, one line per row.
func (w *PlainTableWriter) Render() string {
	if len(w.headers) == 0 {
		return ""
	}

	var sb strings.Builder
	w.writeRow(&sb, w.headers, true)
	for _, row := range w.rows {
		w.writeRow(&sb, row, false)
	}
	return sb.String()
}

func (w *PlainTableWriter) writeRow(sb *strings.Builder, row []string, header bool) {
	var line strings.Builder
	for i, cell := range row {
		padding := 0
		if i < len(row)-1 {
			padding = w.columnWidths[i] + w.minPadding - text.RuneWidthWithoutEscSequences(cell)
		}
		if header {
			cell = w.theme.Muted(cell)
		}
		line.WriteString(cell)
		line.WriteString(strings.Repeat(" ", padding))
	}
	sb.WriteString(strings.TrimRight(line.String(), " "))
	sb.WriteString("\n")
}

// renderAttributes renders a single record as a two-column property table
// with rounded borders.
func renderAttributes(record Record, theme Theme) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Attribute", "Value"})
	for _, f := range record {
		t.AppendRow(table.Row{humanize(f.Key), theme.Expand(formatCell(f.Value, "\n"))})
	}
	return t.Render()
}
