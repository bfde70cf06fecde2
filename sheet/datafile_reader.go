package sheet

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// ErrInvalidDataFile is returned for a data file that is not a JSON object.
var ErrInvalidDataFile = errors.New("data file is not a JSON object")

var dataFileKeys = [...]string{
	KindProfile:      "about",
	KindSocialLinks:  "socialMedia",
	KindPortfolio:    "portfolio",
	KindAchievements: "achievements",
}

// ReadDataFile reads a static data file laid out as
// {about, socialMedia, portfolio, achievements} into one table per kind, so it
// is decoded by the same column rules as a sheet. about is a single object;
// the other keys are arrays of objects. A missing key leaves its kind out of
// the returned map.
func ReadDataFile(path string) (map[Kind]Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file %s: %w", path, err)
	}
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidDataFile)
	}
	root := gjson.ParseBytes(content)
	if !root.IsObject() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidDataFile)
	}

	tables := make(map[Kind]Table, len(Kinds()))
	for _, kind := range Kinds() {
		value := root.Get(dataFileKeys[kind])
		if !value.Exists() {
			continue
		}

		var records []gjson.Result
		switch {
		case value.IsArray():
			records = value.Array()
		case value.IsObject():
			records = []gjson.Result{value}
		}

		cols := kindColumns[kind]
		headers := make([]string, len(cols))
		for i, col := range cols {
			headers[i] = columnLabels[col]
		}

		rows := make([][]Cell, 0, len(records))
		for _, record := range records {
			row := make([]Cell, len(cols))
			for i, label := range headers {
				row[i] = cellFromValue(record.Get(label), gjson.Result{})
			}
			rows = append(rows, row)
		}
		tables[kind] = NewTable(headers, rows)
	}
	return tables, nil
}
