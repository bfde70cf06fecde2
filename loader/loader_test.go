package loader

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xuri/excelize/v2"

	"sheetfolio/gviz"
	"sheetfolio/history"
	"sheetfolio/internal/metrics"
	"sheetfolio/output"
	"sheetfolio/portfolio"
	"sheetfolio/sheet"
)

type fakeFetcher struct {
	bodies gviz.Bodies
}

func (f fakeFetcher) FetchAll(context.Context, []gviz.Source) gviz.Bodies {
	return f.bodies
}

type fakeRecorder struct {
	runs []history.Run
	err  error
}

func (r *fakeRecorder) RecordLoad(_ context.Context, run history.Run) (int64, error) {
	r.runs = append(r.runs, run)
	return int64(len(r.runs)), r.err
}

func TestLoader_Load_FailedSourceDoesNotAffectOthers(t *testing.T) {
	t.Parallel()

	bodies := fixtureBodies(t)
	bodies["Portfolio"] = gviz.Body{Err: errors.New("status 500")}

	recorder := &fakeRecorder{}
	m := metrics.New(prometheus.NewRegistry())
	l := New(Options{
		Sources:  sourcesFor(sheet.Kinds()),
		Fetcher:  fakeFetcher{bodies: bodies},
		Recorder: recorder,
		Metrics:  m,
	})

	page, run := l.Load(context.Background())

	if page.Items == nil || len(page.Items) != 0 {
		t.Fatalf("expected empty portfolio, got %+v", page.Items)
	}
	if page.Profile != (portfolio.Profile{Name: "Rina", Description: "Backend developer"}) {
		t.Fatalf("unexpected profile: %+v", page.Profile)
	}
	if len(page.SocialLinks) != 1 || len(page.Achievements) != 1 {
		t.Fatalf("unaffected sources were not decoded: %+v", page)
	}

	if len(recorder.runs) != 1 {
		t.Fatalf("expected one recorded run, got %d", len(recorder.runs))
	}
	failed := run.Failed()
	if len(failed) != 1 || failed[0].Source != "Portfolio" || failed[0].Status != history.StatusFetchFailed {
		t.Fatalf("unexpected failed sources: %+v", failed)
	}
	if failed[0].Error != "status 500" {
		t.Fatalf("unexpected error text: %q", failed[0].Error)
	}
	if got := testutil.ToFloat64(m.SourceFetches.WithLabelValues("Portfolio", history.StatusFetchFailed)); got != 1 {
		t.Fatalf("expected failed fetch metric, got %v", got)
	}
}

func TestLoader_Load_EverySourceFailing(t *testing.T) {
	t.Parallel()

	for _, kind := range sheet.Kinds() {
		bodies := fixtureBodies(t)
		bodies[kind.SheetName()] = gviz.Body{Err: errors.New("offline")}

		page, run := New(Options{Sources: sourcesFor(sheet.Kinds()), Fetcher: fakeFetcher{bodies: bodies}}).Load(context.Background())

		want := fixturePage()
		switch kind {
		case sheet.KindProfile:
			want.Profile = portfolio.Profile{}
		case sheet.KindSocialLinks:
			want.SocialLinks = []portfolio.SocialLink{}
		case sheet.KindPortfolio:
			want.Items = []portfolio.Item{}
		case sheet.KindAchievements:
			want.Achievements = []portfolio.Achievement{}
		}
		if diff := cmp.Diff(want, page); diff != "" {
			t.Fatalf("%s failing: unexpected page (-want +got):\n%s", kind, diff)
		}
		if len(run.Failed()) != 1 {
			t.Fatalf("%s failing: expected one failed source, got %+v", kind, run.Failed())
		}
	}
}

func TestLoader_Load_MalformedBodyIsDecodeEmpty(t *testing.T) {
	t.Parallel()

	bodies := fixtureBodies(t)
	bodies["Achievements"] = gviz.Body{Text: "<html>sign in</html>", OK: true}

	page, run := New(Options{Sources: sourcesFor(sheet.Kinds()), Fetcher: fakeFetcher{bodies: bodies}}).Load(context.Background())

	if len(page.Achievements) != 0 {
		t.Fatalf("expected no achievements, got %+v", page.Achievements)
	}
	failed := run.Failed()
	if len(failed) != 1 || failed[0].Status != history.StatusDecodeEmpty {
		t.Fatalf("unexpected failed sources: %+v", failed)
	}
}

func TestLoader_Load_RecorderErrorIsNotFatal(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{err: errors.New("disk full")}
	page, _ := New(Options{
		Sources:  sourcesFor(sheet.Kinds()),
		Fetcher:  fakeFetcher{bodies: fixtureBodies(t)},
		Recorder: recorder,
	}).Load(context.Background())

	if page.Profile.Name != "Rina" {
		t.Fatalf("unexpected profile: %+v", page.Profile)
	}
}

func TestLoader_Load_ConfiguredPlaceholder(t *testing.T) {
	t.Parallel()

	page, _ := New(Options{
		Sources:          sourcesFor(sheet.Kinds()),
		Fetcher:          fakeFetcher{bodies: fixtureBodies(t)},
		PlaceholderImage: "https://cdn.example/placeholder.png",
	}).Load(context.Background())

	if len(page.Items) != 1 || page.Items[0].ImageURL != "https://cdn.example/placeholder.png" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
}

func TestLoader_Load_EndToEndOverHTTP(t *testing.T) {
	t.Parallel()

	bodies := fixtureBodies(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Query().Get("sheet")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body.Text))
	}))
	defer server.Close()

	names := make([]string, 0, len(sheet.Kinds()))
	for _, kind := range sheet.Kinds() {
		names = append(names, kind.SheetName())
	}
	sources, err := gviz.BuildSources(server.URL+"/d/{id}/gviz?sheet={sheet}", "doc", names)
	if err != nil {
		t.Fatalf("build sources: %v", err)
	}

	page, run := New(Options{Sources: sources, Fetcher: gviz.NewClient(gviz.ClientConfig{})}).Load(context.Background())

	if diff := cmp.Diff(fixturePage(), page); diff != "" {
		t.Fatalf("unexpected page (-want +got):\n%s", diff)
	}
	if len(run.Failed()) != 0 {
		t.Fatalf("expected clean run, got %+v", run.Failed())
	}
	if run.Mode != history.ModeNetwork {
		t.Fatalf("unexpected mode %q", run.Mode)
	}
}

func TestLoader_Load_Workbook(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "portfolio.xlsx")
	file := excelize.NewFile()
	if err := file.SetSheetName(file.GetSheetName(0), "About"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if err := file.SetSheetRow("About", "A1", &[]any{"name", "description"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if err := file.SetSheetRow("About", "A2", &[]any{"Rina", "Backend developer"}); err != nil {
		t.Fatalf("write row: %v", err)
	}
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = file.Close()

	page, run := New(Options{Workbook: path}).Load(context.Background())

	if page.Profile.Name != "Rina" {
		t.Fatalf("unexpected profile: %+v", page.Profile)
	}
	if run.Mode != history.ModeWorkbook {
		t.Fatalf("unexpected mode %q", run.Mode)
	}
	if len(run.Failed()) != 3 {
		t.Fatalf("expected three missing sheets, got %+v", run.Failed())
	}
}

func TestLoader_Load_MissingWorkbook(t *testing.T) {
	t.Parallel()

	page, run := New(Options{Workbook: filepath.Join(t.TempDir(), "missing.xlsx")}).Load(context.Background())

	if diff := cmp.Diff(portfolio.EmptyPage(), page); diff != "" {
		t.Fatalf("expected empty page (-want +got):\n%s", diff)
	}
	if len(run.Failed()) != len(sheet.Kinds()) {
		t.Fatalf("expected every source failed, got %+v", run.Failed())
	}
}

func TestLoader_Load_DataFileReadsExportedPage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	if err := (&output.JSONWriter{}).Write(path, fixturePage()); err != nil {
		t.Fatalf("export data file: %v", err)
	}

	page, run := New(Options{DataFile: path}).Load(context.Background())

	if diff := cmp.Diff(fixturePage(), page); diff != "" {
		t.Fatalf("unexpected page (-want +got):\n%s", diff)
	}
	if run.Mode != history.ModeDataFile {
		t.Fatalf("unexpected mode %q", run.Mode)
	}
	if failed := run.Failed(); len(failed) != 0 {
		t.Fatalf("expected no failed sources, got %+v", failed)
	}
}

func TestLoader_Load_DataFileMissingKeyFailsOnlyThatSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.json")
	content := `{
		"about": {"name": "Rina", "description": "Backend developer"},
		"socialMedia": [{"platform": "github", "url": "https://github.com/rina"}],
		"portfolio": [{"title": "Shop", "description": "An online shop"}]
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write data file: %v", err)
	}

	page, run := New(Options{DataFile: path}).Load(context.Background())

	if page.Profile.Name != "Rina" {
		t.Fatalf("unexpected profile: %+v", page.Profile)
	}
	failed := run.Failed()
	if len(failed) != 1 || failed[0].Source != "Achievements" {
		t.Fatalf("expected only Achievements failed, got %+v", failed)
	}
	if run.LoadError() != nil {
		t.Fatalf("unexpected load error: %v", run.LoadError())
	}
}

func TestLoader_Load_WorkbookWinsOverDataFile(t *testing.T) {
	t.Parallel()

	dataFile := filepath.Join(t.TempDir(), "data.json")
	if err := (&output.JSONWriter{}).Write(dataFile, fixturePage()); err != nil {
		t.Fatalf("export data file: %v", err)
	}

	_, run := New(Options{
		Workbook: filepath.Join(t.TempDir(), "missing.xlsx"),
		DataFile: dataFile,
	}).Load(context.Background())

	if run.Mode != history.ModeWorkbook {
		t.Fatalf("unexpected mode %q", run.Mode)
	}
}

func sourcesFor(kinds []sheet.Kind) []gviz.Source {
	out := make([]gviz.Source, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, gviz.Source{Name: kind.SheetName(), URL: "https://example.invalid/" + kind.SheetName()})
	}
	return out
}

func fixturePage() portfolio.Page {
	return portfolio.Page{
		Profile:     portfolio.Profile{Name: "Rina", Description: "Backend developer"},
		SocialLinks: []portfolio.SocialLink{{Platform: "github", URL: "https://github.com/rina"}},
		Items: []portfolio.Item{{
			Title:       "Shop",
			Description: "An online shop",
			ImageURL:    portfolio.PlaceholderImageURL,
		}},
		Achievements: []portfolio.Achievement{{Title: "Winner", Description: "Hackathon", Date: "2023-01-15"}},
	}
}

func fixtureBodies(t *testing.T) gviz.Bodies {
	t.Helper()

	return gviz.Bodies{
		"About":        {OK: true, Text: wrap(t, []string{"name", "description"}, []any{"Rina", "Backend developer"})},
		"SocialMedia":  {OK: true, Text: wrap(t, []string{"platform", "url"}, []any{"github", "https://github.com/rina"})},
		"Portfolio":    {OK: true, Text: wrap(t, []string{"title", "description", "imageUrl"}, []any{"Shop", "An online shop", nil})},
		"Achievements": {OK: true, Text: wrap(t, []string{"title", "description", "date"}, []any{"Winner", "Hackathon", "Date(2023,0,15)"})},
	}
}

func wrap(t *testing.T, labels []string, row []any) string {
	t.Helper()

	cols := make([]map[string]string, 0, len(labels))
	for _, label := range labels {
		cols = append(cols, map[string]string{"label": label})
	}
	cells := make([]any, 0, len(row))
	for _, value := range row {
		if value == nil {
			cells = append(cells, nil)
			continue
		}
		cells = append(cells, map[string]any{"v": value})
	}
	payload, err := json.Marshal(map[string]any{
		"table": map[string]any{"cols": cols, "rows": []any{map[string]any{"c": cells}}},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return "/*O_o*/\ngoogle.visualization.Query.setResponse(" + string(payload) + ");"
}
