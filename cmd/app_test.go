package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"sheetfolio/config"
	"sheetfolio/gviz"
	"sheetfolio/history"
	"sheetfolio/output"
	"sheetfolio/portfolio"
	"sheetfolio/storage"
)

func testConfig() config.Config {
	return config.Config{
		Sheet:  config.SheetConfig{Endpoint: gviz.DefaultEndpoint},
		Fetch:  config.FetchConfig{Timeout: 5 * time.Second, UserAgent: "sheetfolio-test"},
		Page:   config.PageConfig{PlaceholderImage: portfolio.PlaceholderImageURL},
		Server: config.ServerConfig{Port: 8080},
		Log:    config.LogConfig{Level: "error", Format: "console"},
	}
}

func writeTestWorkbook(t *testing.T) string {
	t.Helper()

	page := portfolio.EmptyPage()
	page.Profile = portfolio.Profile{Name: "Rina Putri", Description: "Backend developer"}
	page.SocialLinks = []portfolio.SocialLink{{Platform: "github", URL: "https://github.com/rina"}}
	page.Items = []portfolio.Item{{Title: "Shop", Description: "An online shop", ImageURL: portfolio.PlaceholderImageURL}}
	page.Achievements = []portfolio.Achievement{{Title: "Winner", Description: "Hackathon", Date: "2023-01-15"}}

	path := filepath.Join(t.TempDir(), "portfolio.xlsx")
	if err := (&output.ExcelWriter{}).Write(path, page); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return path
}

func newTestCommand() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestBuildPage_FromWorkbookRecordsHistory(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Sheet.Workbook = writeTestWorkbook(t)
	cfg.History.DB = filepath.Join(t.TempDir(), "history.db")

	a, err := newApp(&cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	outPath := filepath.Join(t.TempDir(), "index.html")
	cmd, _ := newTestCommand()
	run, err := buildPage(cmd, a, outPath)
	if err != nil {
		t.Fatalf("build page: %v", err)
	}
	if run.Mode != history.ModeWorkbook || len(run.Failed()) != 0 {
		t.Fatalf("unexpected run: %+v", run)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	for _, want := range []string{"Rina Putri", "An online shop", "15 Januari 2023", "https://github.com/rina"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("page missing %q", want)
		}
	}

	runs, err := a.store.ListLoads(context.Background(), 5)
	if err != nil {
		t.Fatalf("list loads: %v", err)
	}
	if len(runs) != 1 || len(runs[0].Sources) != 4 {
		t.Fatalf("expected one recorded load with four sources, got %+v", runs)
	}
}

func TestBuildPage_NetworkSourceDegradesPerSheet(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sheet") != "About" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `/*O_o*/
google.visualization.Query.setResponse({"table":{"cols":[{"label":"name"},{"label":"description"}],"rows":[{"c":[{"v":"Rina Putri"},{"v":"Backend developer"}]}]}});`)
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.Sheet.SpreadsheetID = "abc123"
	cfg.Sheet.Endpoint = ts.URL + "/d/{id}/gviz/tq?tqx=out:json&sheet={sheet}"

	a, err := newApp(&cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	cmd, out := newTestCommand()
	run, err := buildPage(cmd, a, "-")
	if err != nil {
		t.Fatalf("build page: %v", err)
	}

	if failed := run.Failed(); len(failed) != 3 {
		t.Fatalf("expected three failed sources, got %+v", failed)
	}
	page := out.String()
	if !strings.Contains(page, "Rina Putri") {
		t.Fatalf("page missing profile: %s", page)
	}
	if !strings.Contains(page, "Belum ada project") {
		t.Fatalf("page missing empty portfolio placeholder: %s", page)
	}
}

func TestNewApp_RejectsMissingTemplate(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Sheet.Workbook = "unused.xlsx"
	cfg.Page.Template = filepath.Join(t.TempDir(), "missing.html")

	if _, err := newApp(&cfg); err == nil {
		t.Fatalf("expected error for missing page template")
	}
}

func TestNewHTTPServer_ServesPageAndHistory(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Sheet.Workbook = writeTestWorkbook(t)
	cfg.History.DB = filepath.Join(t.TempDir(), "history.db")
	cfg.Server.Port = 9191

	a, err := newApp(&cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	server := newHTTPServer(a)
	if server.Addr != ":9191" {
		t.Fatalf("unexpected addr %q", server.Addr)
	}

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	for _, path := range []string{"/", "/api/history", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, resp.StatusCode, body)
		}
		if path == "/" && !strings.Contains(string(body), "Rina Putri") {
			t.Fatalf("page missing profile: %s", body)
		}
		if path == "/metrics" && !strings.Contains(string(body), "sheetfolio_source_fetch_total") {
			t.Fatalf("metrics missing source counter: %s", body)
		}
	}
}

func TestPrintHistory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := printHistory(&buf, nil); err != nil {
		t.Fatalf("print empty history: %v", err)
	}
	if !strings.Contains(buf.String(), "No loads recorded") {
		t.Fatalf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	runs := []history.Run{{
		ID:        3,
		StartedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Mode:      history.ModeNetwork,
		Sources: []history.SourceOutcome{
			{Source: "About", Status: history.StatusOK, Records: 1},
			{Source: "Portfolio", Status: history.StatusFetchFailed},
		},
	}}
	if err := printHistory(&buf, runs); err != nil {
		t.Fatalf("print history: %v", err)
	}
	text := buf.String()
	if !strings.Contains(text, "About=ok(1)") || !strings.Contains(text, "Portfolio=fetch_failed(0)") || !strings.Contains(text, "1.5s") {
		t.Fatalf("unexpected history output:\n%s", text)
	}
}

func TestPrintConfig_DumpsYAML(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Sheet.SpreadsheetID = "abc123"

	var buf bytes.Buffer
	if err := printConfig(&buf, "/tmp/.sheetfolio.yaml", cfg); err != nil {
		t.Fatalf("print config: %v", err)
	}
	text := buf.String()
	for _, want := range []string{"Config file loaded from: /tmp/.sheetfolio.yaml", "spreadsheet_id: abc123", "timeout: 5s", "port: 8080"} {
		if !strings.Contains(text, want) {
			t.Fatalf("config output missing %q:\n%s", want, text)
		}
	}
}

func TestRecordedHistoryIsReadable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := storage.OpenSQLite(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if _, err := store.RecordLoad(context.Background(), history.Run{StartedAt: time.Now(), Mode: history.ModeNetwork}); err != nil {
		t.Fatalf("record load: %v", err)
	}
	runs, err := store.ListLoads(context.Background(), 1)
	if err != nil {
		t.Fatalf("list loads: %v", err)
	}

	var buf bytes.Buffer
	if err := printHistory(&buf, runs); err != nil {
		t.Fatalf("print history: %v", err)
	}
	if !strings.Contains(buf.String(), "network") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestBuildPage_WritesBannerWhenEverySourceFails(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	cfg := testConfig()
	cfg.Sheet.SpreadsheetID = "abc123"
	cfg.Sheet.Endpoint = ts.URL + "/d/{id}/gviz/tq?tqx=out:json&sheet={sheet}"

	a, err := newApp(&cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	cmd, out := newTestCommand()
	run, err := buildPage(cmd, a, "-")
	if err != nil {
		t.Fatalf("build page: %v", err)
	}
	if run.LoadError() == nil {
		t.Fatalf("expected load error for run %+v", run)
	}
	if !strings.Contains(out.String(), "error-banner") {
		t.Fatalf("expected error banner in page: %s", out.String())
	}
}

func TestBuildPage_FromExportedDataFile(t *testing.T) {
	t.Parallel()

	page := portfolio.EmptyPage()
	page.Profile = portfolio.Profile{Name: "Rina Putri", Description: "Backend developer"}
	page.SocialLinks = []portfolio.SocialLink{{Platform: "github", URL: "https://github.com/rina"}}
	page.Items = []portfolio.Item{{Title: "Shop", Description: "An online shop", ImageURL: portfolio.PlaceholderImageURL}}
	page.Achievements = []portfolio.Achievement{{Title: "Winner", Description: "Hackathon", Date: "2023-01-15"}}

	dataFile := filepath.Join(t.TempDir(), "data.json")
	if err := (&output.JSONWriter{}).Write(dataFile, page); err != nil {
		t.Fatalf("write data file: %v", err)
	}

	cfg := testConfig()
	cfg.Sheet.DataFile = dataFile

	a, err := newApp(&cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	cmd, out := newTestCommand()
	run, err := buildPage(cmd, a, "-")
	if err != nil {
		t.Fatalf("build page: %v", err)
	}
	if run.Mode != history.ModeDataFile || len(run.Failed()) != 0 {
		t.Fatalf("unexpected run: %+v", run)
	}
	for _, want := range []string{"Rina Putri", "An online shop", "15 Januari 2023"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("page missing %q", want)
		}
	}
}
