package loader

import (
	"errors"

	"sheetfolio/history"
	"sheetfolio/sheet"
)

var (
	errSourceNotConfigured = errors.New("source not fetched")
	errSheetMissing        = errors.New("sheet missing from workbook")
	errKeyMissing          = errors.New("key missing from data file")
)

type sourceResult struct {
	name     string
	fetched  bool
	fetchErr error
	decoded  sheet.Result
}

func (r sourceResult) status() string {
	switch {
	case !r.fetched:
		return history.StatusFetchFailed
	case r.decoded.Err != nil:
		return history.StatusDecodeEmpty
	default:
		return history.StatusOK
	}
}

func (r sourceResult) err() error {
	if !r.fetched {
		return r.fetchErr
	}
	return r.decoded.Err
}

func (r sourceResult) outcome() history.SourceOutcome {
	out := history.SourceOutcome{
		Source:  r.name,
		Status:  r.status(),
		Rows:    r.decoded.Rows,
		Records: r.decoded.Records(),
	}
	if err := r.err(); err != nil {
		out.Error = err.Error()
	}
	return out
}
