package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sheetfolio/output"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the decoded sheets to Excel or JSON",
	Long: `Load the four sheets once and export the decoded records.

Formats:
- excel: one tab per sheet with the header labels the decoder reads, usable as sheet.workbook
- json: the page data as {about, socialMedia, portfolio, achievements}, usable as sheet.data_file

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export to an Excel workbook
  sheetfolio export --output ./portfolio.xlsx

  # Export to JSON
  sheetfolio export --output ./data.json

  # Force Excel format independent of extension
  sheetfolio export --format excel --output ./portfolio.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = output.DetectFormat(exportOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		a, err := loadApp()
		if err != nil {
			return err
		}
		defer a.Close()

		page, run := a.loader.Load(commandContext(cmd))
		if err := writer.Write(exportOutput, page); err != nil {
			return err
		}
		printRunSummary(cmd.ErrOrStderr(), run)
		fmt.Fprintf(cmd.OutOrStdout(), "Export completed. Social links: %d, Projects: %d, Achievements: %d, Format: %s, File: %s\n",
			len(page.SocialLinks), len(page.Items), len(page.Achievements), format, exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: excel|json (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")

	_ = exportCmd.MarkFlagRequired("output")
}
