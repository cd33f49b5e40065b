// Package table lays out plain-text columns for terminal output.
package table

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Column describes how one column is laid out. MaxWidth of zero means
// unbounded; wider cells are truncated with an ellipsis.
type Column struct {
	Align    Alignment
	MaxWidth int
}

// Format returns the rows padded according to the widest entry in each
// column. Widths are measured in terminal cells, so wide characters and
// ANSI styling line up.
func Format(rows [][]string, columns []Column) []string {
	if len(rows) == 0 {
		return nil
	}
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	cells := make([][]string, len(rows))
	widths := make([]int, colCount)
	for r, row := range rows {
		cells[r] = make([]string, colCount)
		for c := 0; c < colCount; c++ {
			var cell string
			if c < len(row) {
				cell = row[c]
			}
			if c < len(columns) && columns[c].MaxWidth > 0 && ansi.StringWidth(cell) > columns[c].MaxWidth {
				cell = ansi.Truncate(cell, columns[c].MaxWidth, "…")
			}
			cells[r][c] = cell
			if w := ansi.StringWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	out := make([]string, len(cells))
	for i, row := range cells {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString("  ")
			}
			pad := widths[c] - ansi.StringWidth(cell)
			if c < len(columns) && columns[c].Align == AlignRight {
				b.WriteString(strings.Repeat(" ", pad))
				b.WriteString(cell)
			} else {
				b.WriteString(cell)
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		out[i] = strings.TrimRight(b.String(), " ")
	}
	return out
}
