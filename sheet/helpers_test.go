package sheet

import (
	"encoding/json"
	"testing"
)

// gvizBody builds an export response the way the endpoint wraps it. A nil
// cell value is emitted as a null cell.
func gvizBody(t *testing.T, labels []string, rows [][]any) string {
	t.Helper()

	cols := make([]map[string]any, 0, len(labels))
	for _, label := range labels {
		cols = append(cols, map[string]any{"id": "", "label": label, "type": "string"})
	}
	outRows := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		cells := make([]any, 0, len(row))
		for _, value := range row {
			if value == nil {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, map[string]any{"v": value})
		}
		outRows = append(outRows, map[string]any{"c": cells})
	}

	payload, err := json.Marshal(map[string]any{
		"version": "0.6",
		"reqId":   "0",
		"status":  "ok",
		"table":   map[string]any{"cols": cols, "rows": outRows},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return "/*O_o*/\ngoogle.visualization.Query.setResponse(" + string(payload) + ");"
}
