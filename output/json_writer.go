package output

import (
	"encoding/json"
	"fmt"
	"os"

	"sheetfolio/portfolio"
)

// JSONWriter writes the page in the static data.json layout
// ({about, socialMedia, portfolio, achievements}).
type JSONWriter struct{}

func (w *JSONWriter) Write(path string, page portfolio.Page) error {
	payload, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write json output %s: %w", path, err)
	}
	return nil
}
