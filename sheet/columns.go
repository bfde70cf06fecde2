package sheet

// column is a logical record field. Its expected sheet label is fixed in
// columnLabels; positions are resolved per table by bind.
type column int

const (
	colName column = iota
	colDescription
	colPlatform
	colURL
	colTitle
	colImageURL
	colProjectURL
	colDate
	columnCount
)

var columnLabels = [columnCount]string{
	colName:        "name",
	colDescription: "description",
	colPlatform:    "platform",
	colURL:         "url",
	colTitle:       "title",
	colImageURL:    "imageUrl",
	colProjectURL:  "projectUrl",
	colDate:        "date",
}

// binding holds resolved column positions for one table; -1 marks a label the
// table does not carry.
type binding struct {
	table   Table
	indexes [columnCount]int
}

func bind(table Table) binding {
	b := binding{table: table}
	for col := range b.indexes {
		b.indexes[col] = table.Index(columnLabels[col])
	}
	return b
}

// value returns the cell for col in row, or "" when the column is unbound or
// the cell is absent.
func (b binding) value(row int, col column) string {
	value, ok := b.table.Cell(row, b.indexes[col])
	if !ok {
		return ""
	}
	return value
}

func (b binding) valueOr(row int, col column, fallback string) string {
	if value := b.value(row, col); value != "" {
		return value
	}
	return fallback
}

func (b binding) has(col column) bool {
	return b.indexes[col] >= 0
}
