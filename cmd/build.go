package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sheetfolio/config"
	"sheetfolio/history"
)

var buildOutput string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the portfolio page once into a file",
	Long: `Load the four sheets once and write the rendered page.

Sheets that fail to load render as empty sections and are listed after the
build. Use "-" as output to write the page to stdout.`,
	Example: `
  # Render into index.html
  sheetfolio build --output ./index.html

  # Render from a local workbook instead of the network export
  SHEETFOLIO_SHEET_WORKBOOK=./portfolio.xlsx sheetfolio build --output ./index.html

  # Render from an exported data.json
  SHEETFOLIO_SHEET_DATA_FILE=./data.json sheetfolio build --output ./index.html
`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{"db": config.KeyHistoryDB})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := buildPage(cmd, a, buildOutput)
		if err != nil {
			return err
		}
		printRunSummary(cmd.ErrOrStderr(), run)
		return nil
	},
}

// buildPage runs one load and writes the rendered page to path, or to the
// command output for "-". When no source could be fetched, or the page fails
// to render, the banner page is written instead.
func buildPage(cmd *cobra.Command, a *app, path string) (history.Run, error) {
	page, run := a.loader.Load(commandContext(cmd))

	var buf bytes.Buffer
	if loadErr := run.LoadError(); loadErr != nil {
		if err := a.renderer.RenderError(&buf, loadErr); err != nil {
			return run, fmt.Errorf("render error banner: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", loadErr)
	} else {
		report, err := a.renderer.Render(&buf, page)
		if err != nil {
			buf.Reset()
			if bannerErr := a.renderer.RenderError(&buf, err); bannerErr != nil {
				return run, fmt.Errorf("render page: %w", err)
			}
		}
		if len(report.FailedSections) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Sections kept template markup: %s\n", strings.Join(report.FailedSections, ", "))
		}
	}

	if path == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return run, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return run, fmt.Errorf("write page %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Page written to %s\n", path)
	return run, nil
}

func printRunSummary(w io.Writer, run history.Run) {
	for _, source := range run.Sources {
		line := fmt.Sprintf("%-13s %-13s rows=%d records=%d", source.Source, source.Status, source.Rows, source.Records)
		if source.Error != "" {
			line += " error=" + source.Error
		}
		fmt.Fprintln(w, line)
	}
	if failed := run.Failed(); len(failed) > 0 {
		fmt.Fprintf(w, "%d of %d sources degraded to empty sections\n", len(failed), len(run.Sources))
	}
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "index.html", `Output file path ("-" for stdout)`)
	buildCmd.Flags().String("db", "", "Path to SQLite history database (empty disables history)")
}
