package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidateYAMLContent_ExampleNeedsSpreadsheetID(t *testing.T) {
	t.Parallel()

	_, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err == nil {
		t.Fatalf("expected example config without spreadsheet id to fail")
	}
	if !strings.Contains(err.Error(), "SpreadsheetID") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(`sheet:
  spreadsheet_id: "1AbC"
log:
  level: DEBUG
`))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Fetch.Timeout != 30*time.Second {
		t.Fatalf("unexpected default timeout: %s", cfg.Fetch.Timeout)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected normalized log level, got %q", cfg.Log.Level)
	}
	if cfg.UsesWorkbook() {
		t.Fatalf("expected network source")
	}
}

func TestValidateYAMLContent_WorkbookReplacesSpreadsheetID(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(`sheet:
  workbook: "./portfolio.xlsx"
  endpoint: "not-a-template"
`))
	if err != nil {
		t.Fatalf("expected workbook config to validate: %v", err)
	}
	if !cfg.UsesWorkbook() {
		t.Fatalf("expected workbook source")
	}
}

func TestValidateYAMLContent_DataFileReplacesSpreadsheetID(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(`sheet:
  data_file: "./data.json"
  endpoint: "not-a-template"
`))
	if err != nil {
		t.Fatalf("expected data file config to validate: %v", err)
	}
	if !cfg.UsesDataFile() {
		t.Fatalf("expected data file source")
	}
	if cfg.UsesWorkbook() {
		t.Fatalf("expected no workbook source")
	}
}

func TestValidateYAMLContent_WorkbookWinsOverDataFile(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(`sheet:
  workbook: "./portfolio.xlsx"
  data_file: "./data.json"
`))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if !cfg.UsesWorkbook() || cfg.UsesDataFile() {
		t.Fatalf("expected workbook source, got workbook=%v data_file=%v", cfg.UsesWorkbook(), cfg.UsesDataFile())
	}
}

func TestValidateYAMLContent_RejectsEndpointWithoutPlaceholders(t *testing.T) {
	t.Parallel()

	_, err := ValidateYAMLContent([]byte(`sheet:
  spreadsheet_id: "1AbC"
  endpoint: "https://docs.google.com/spreadsheets/d/1AbC/gviz/tq"
`))
	if err == nil {
		t.Fatalf("expected endpoint validation error")
	}
	if !strings.Contains(err.Error(), "sheet.endpoint") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"port":    "sheet:\n  spreadsheet_id: x\nserver:\n  port: 70000\n",
		"level":   "sheet:\n  spreadsheet_id: x\nlog:\n  level: loud\n",
		"timeout": "sheet:\n  spreadsheet_id: x\nfetch:\n  timeout: 0s\n",
		"image":   "sheet:\n  spreadsheet_id: x\npage:\n  placeholder_image: not a url\n",
	}

	for name, content := range tests {
		if _, err := ValidateYAMLContent([]byte(content)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
