package sheet

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrNoPayload      = errors.New("response carries no JSON payload")
	ErrInvalidPayload = errors.New("payload is not valid JSON")
	ErrNoTable        = errors.New("payload has no table")
	ErrNoRows         = errors.New("table has no rows")
)

// Unwrap strips the non-JSON preamble and postamble of an export response by
// taking everything from the first '{' to the last '}'.
func Unwrap(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// ParseTable reads table.cols[].label and table.rows[].c[].v from an
// unwrapped payload into a rectangular Table.
func ParseTable(payload string) (Table, error) {
	if !gjson.Valid(payload) {
		return Table{}, ErrInvalidPayload
	}

	table := gjson.Get(payload, "table")
	if !table.IsObject() {
		return Table{}, ErrNoTable
	}

	rows := table.Get("rows")
	if !rows.IsArray() || len(rows.Array()) == 0 {
		return Table{}, ErrNoRows
	}

	cols := table.Get("cols").Array()
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.Get("label").String()
	}

	cells := make([][]Cell, 0, len(rows.Array()))
	for _, row := range rows.Array() {
		values := row.Get("c").Array()
		out := make([]Cell, len(values))
		for i, value := range values {
			out[i] = cellFromJSON(value)
		}
		cells = append(cells, out)
	}

	return NewTable(headers, cells), nil
}

// DecodeTable unwraps and parses one raw response body. ok reports whether a
// body was received at all.
func DecodeTable(raw string, ok bool) (Table, error) {
	if !ok || raw == "" {
		return Table{}, ErrNoPayload
	}
	payload, found := Unwrap(raw)
	if !found {
		return Table{}, ErrNoPayload
	}
	return ParseTable(payload)
}

// cellFromJSON reads one {"v":..,"f":..} cell.
func cellFromJSON(cell gjson.Result) Cell {
	return cellFromValue(cell.Get("v"), cell.Get("f"))
}

// cellFromValue converts a JSON value into a cell. Numbers use the formatted
// text when there is one, so 2023.0 reads as "2023".
func cellFromValue(value, formatted gjson.Result) Cell {
	switch value.Type {
	case gjson.Null:
		return Cell{}
	case gjson.String:
		return Cell{Value: value.Str, Present: true}
	case gjson.True:
		return Cell{Value: "true", Present: true}
	case gjson.False:
		return Cell{Value: "false", Present: true}
	case gjson.Number:
		if formatted.Type == gjson.String && strings.TrimSpace(formatted.Str) != "" {
			return Cell{Value: formatted.Str, Present: true}
		}
		return Cell{Value: strconv.FormatFloat(value.Num, 'f', -1, 64), Present: true}
	default:
		return Cell{Value: value.Raw, Present: true}
	}
}
