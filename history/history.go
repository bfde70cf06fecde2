package history

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Source statuses recorded per load.
const (
	StatusOK          = "ok"
	StatusFetchFailed = "fetch_failed"
	StatusDecodeEmpty = "decode_empty"
)

// Source modes of a load.
const (
	ModeNetwork  = "network"
	ModeWorkbook = "workbook"
	ModeDataFile = "data_file"
)

// Run is the normalized record of one four-sheet load, shared by the loader,
// the history store and the API.
type Run struct {
	ID        int64           `json:"id,omitempty"`
	StartedAt time.Time       `json:"startedAt"`
	Duration  time.Duration   `json:"duration"`
	Mode      string          `json:"mode"`
	Sources   []SourceOutcome `json:"sources"`
}

type SourceOutcome struct {
	Source  string `json:"source"`
	Status  string `json:"status"`
	Rows    int    `json:"rows"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// Failed returns the outcomes that did not load cleanly.
func (r Run) Failed() []SourceOutcome {
	out := make([]SourceOutcome, 0, len(r.Sources))
	for _, source := range r.Sources {
		if source.Status != StatusOK {
			out = append(out, source)
		}
	}
	return out
}

// LoadError is non-nil when not a single source could be fetched. The error
// lists each source's failure.
func (r Run) LoadError() error {
	if len(r.Sources) == 0 {
		return nil
	}
	parts := make([]string, 0, len(r.Sources))
	for _, source := range r.Sources {
		if source.Status != StatusFetchFailed {
			return nil
		}
		if source.Error != "" {
			parts = append(parts, source.Source+": "+source.Error)
		} else {
			parts = append(parts, source.Source)
		}
	}
	return fmt.Errorf("%w (%s)", ErrNothingLoaded, strings.Join(parts, "; "))
}

// ErrNothingLoaded marks a load in which every source failed to fetch.
var ErrNothingLoaded = errors.New("no source could be loaded")
