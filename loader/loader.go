package loader

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sheetfolio/gviz"
	"sheetfolio/history"
	"sheetfolio/internal/metrics"
	"sheetfolio/portfolio"
	"sheetfolio/sheet"
)

// Fetcher retrieves the raw bodies of all sources at once.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []gviz.Source) gviz.Bodies
}

// Recorder persists the outcome of a load.
type Recorder interface {
	RecordLoad(ctx context.Context, run history.Run) (int64, error)
}

type Options struct {
	// Sources are fetched through Fetcher. Ignored when Workbook is set.
	Sources []gviz.Source
	Fetcher Fetcher

	// Workbook is a local .xlsx read instead of the network export.
	Workbook string
	// DataFile is a static data.json read instead of the network export.
	// Workbook wins when both are set.
	DataFile string

	PlaceholderImage string
	Recorder         Recorder
	Metrics          *metrics.Metrics
	Logger           *zap.Logger
}

// Loader runs one full load per call: fetch every sheet, decode each one
// independently, assemble the page. It keeps no state between calls.
type Loader struct {
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func New(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{opts: opts, logger: logger, now: time.Now}
}

// Load never fails: a source that cannot be fetched or decoded contributes
// its empty value and is reported in the returned run.
func (l *Loader) Load(ctx context.Context) (portfolio.Page, history.Run) {
	started := l.now()
	run := history.Run{StartedAt: started, Mode: history.ModeNetwork}

	var results []sourceResult
	switch {
	case l.opts.Workbook != "":
		run.Mode = history.ModeWorkbook
		results = loadTables(func() (map[sheet.Kind]sheet.Table, error) {
			return sheet.ReadWorkbook(l.opts.Workbook)
		}, errSheetMissing)
	case l.opts.DataFile != "":
		run.Mode = history.ModeDataFile
		results = loadTables(func() (map[sheet.Kind]sheet.Table, error) {
			return sheet.ReadDataFile(l.opts.DataFile)
		}, errKeyMissing)
	default:
		results = l.loadNetwork(ctx)
	}

	page := portfolio.EmptyPage()
	for _, result := range results {
		result.decoded.ApplyTo(&page)
		run.Sources = append(run.Sources, result.outcome())
		l.opts.Metrics.ObserveSource(result.name, result.status(), result.decoded.Records())
		l.logResult(result)
	}
	applyPlaceholder(&page, l.opts.PlaceholderImage)

	run.Duration = l.now().Sub(started)
	l.opts.Metrics.ObserveLoad(run.Duration.Seconds())
	l.record(ctx, run)

	return page, run
}

func (l *Loader) loadNetwork(ctx context.Context) []sourceResult {
	bodies := gviz.Bodies{}
	if l.opts.Fetcher != nil && len(l.opts.Sources) > 0 {
		bodies = l.opts.Fetcher.FetchAll(ctx, l.opts.Sources)
	}

	results := make([]sourceResult, 0, len(sheet.Kinds()))
	for _, kind := range sheet.Kinds() {
		name := kind.SheetName()
		body := bodies[name]
		if body.Err == nil && !body.OK {
			body.Err = errSourceNotConfigured
		}
		results = append(results, sourceResult{
			name:     name,
			fetched:  body.OK,
			fetchErr: body.Err,
			decoded:  sheet.Decode(kind, body.Text, body.OK),
		})
	}
	return results
}

// loadTables decodes locally read tables. A kind without a table fails with
// missing.
func loadTables(read func() (map[sheet.Kind]sheet.Table, error), missing error) []sourceResult {
	tables, err := read()
	results := make([]sourceResult, 0, len(sheet.Kinds()))
	for _, kind := range sheet.Kinds() {
		name := kind.SheetName()
		if err != nil {
			results = append(results, sourceResult{name: name, fetchErr: err, decoded: sheet.Decode(kind, "", false)})
			continue
		}
		table, ok := tables[kind]
		if !ok {
			results = append(results, sourceResult{name: name, fetchErr: missing, decoded: sheet.Decode(kind, "", false)})
			continue
		}
		result := sourceResult{name: name, fetched: true, decoded: sheet.MapTable(kind, table)}
		if len(table.Rows) == 0 {
			result.decoded.Err = sheet.ErrNoRows
		}
		results = append(results, result)
	}
	return results
}

func (l *Loader) record(ctx context.Context, run history.Run) {
	if l.opts.Recorder == nil {
		return
	}
	if _, err := l.opts.Recorder.RecordLoad(ctx, run); err != nil {
		l.logger.Warn("record load history failed", zap.Error(err))
	}
}

func (l *Loader) logResult(result sourceResult) {
	fields := []zap.Field{
		zap.String("source", result.name),
		zap.String("status", result.status()),
		zap.Int("rows", result.decoded.Rows),
		zap.Int("records", result.decoded.Records()),
	}
	if len(result.decoded.Missing) > 0 {
		fields = append(fields, zap.Strings("missing_labels", result.decoded.Missing))
	}
	if err := result.err(); err != nil {
		l.logger.Warn("source degraded to empty value", append(fields, zap.Error(err))...)
		return
	}
	l.logger.Debug("source decoded", fields...)
}

// applyPlaceholder swaps the built-in placeholder for a configured one.
func applyPlaceholder(page *portfolio.Page, placeholder string) {
	if placeholder == "" || placeholder == portfolio.PlaceholderImageURL {
		return
	}
	for i := range page.Items {
		if page.Items[i].ImageURL == portfolio.PlaceholderImageURL {
			page.Items[i].ImageURL = placeholder
		}
	}
}
