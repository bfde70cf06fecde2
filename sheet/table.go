package sheet

import "strings"

// Cell is one value of a table row. Present is false for cells the source
// left empty or null.
type Cell struct {
	Value   string
	Present bool
}

// Table is the rectangular form of one sheet: every row has exactly
// len(Headers) cells.
type Table struct {
	Headers []string
	Rows    [][]Cell
}

// NewTable builds a rectangular table, padding short rows with absent cells
// and truncating long ones.
func NewTable(headers []string, rows [][]Cell) Table {
	out := Table{
		Headers: append([]string(nil), headers...),
		Rows:    make([][]Cell, 0, len(rows)),
	}
	for _, row := range rows {
		cells := make([]Cell, len(headers))
		copy(cells, row)
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// Index returns the column position of label, or -1 when no header matches.
func (t Table) Index(label string) int {
	normalized := normalizeLabel(label)
	for i, header := range t.Headers {
		if normalizeLabel(header) == normalized {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed value at row/column. Negative or out of range
// positions are reported as absent.
func (t Table) Cell(row, index int) (string, bool) {
	if row < 0 || row >= len(t.Rows) {
		return "", false
	}
	cells := t.Rows[row]
	if index < 0 || index >= len(cells) {
		return "", false
	}
	cell := cells[index]
	if !cell.Present {
		return "", false
	}
	return strings.TrimSpace(cell.Value), true
}

func normalizeLabel(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	trimmed = strings.ReplaceAll(trimmed, "_", "")
	trimmed = strings.ReplaceAll(trimmed, "-", "")
	trimmed = strings.ReplaceAll(trimmed, " ", "")
	return trimmed
}
