package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads the four named sheets from a local .xlsx copy of the
// spreadsheet. The first row of each sheet is its header row. Sheets the
// workbook does not contain are left out of the returned map. Date cells in
// the date column are read as ISO dates instead of their display text.
func ReadWorkbook(path string) (map[Kind]Table, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer file.Close()

	present := make(map[string]string, len(Kinds()))
	for _, name := range file.GetSheetList() {
		present[normalizeLabel(name)] = name
	}

	tables := make(map[Kind]Table, len(Kinds()))
	for _, kind := range Kinds() {
		name, ok := present[normalizeLabel(kind.SheetName())]
		if !ok {
			continue
		}

		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read rows from sheet %s: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		raw, err := file.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read raw rows from sheet %s: %w", name, err)
		}

		dateCol := -1
		for i, header := range rows[0] {
			if normalizeLabel(header) == normalizeLabel(columnLabels[colDate]) {
				dateCol = i
			}
		}

		cells := make([][]Cell, 0, len(rows)-1)
		for r, row := range rows[1:] {
			out := make([]Cell, len(row))
			for i, value := range row {
				if i == dateCol {
					value = workbookDate(value, rawCell(raw, r+1, i))
				}
				out[i] = Cell{Value: value, Present: value != ""}
			}
			cells = append(cells, out)
		}
		tables[kind] = NewTable(rows[0], cells)
	}

	return tables, nil
}

func rawCell(rows [][]string, row, col int) string {
	if row >= len(rows) || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}

// workbookDate turns a date-formatted cell into YYYY-MM-DD. A cell whose raw
// value is not a serial number, or equals its display text, is kept as shown.
func workbookDate(display, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == strings.TrimSpace(display) {
		return display
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial <= 0 {
		return display
	}
	parsed, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return display
	}
	return parsed.Format("2006-01-02")
}
