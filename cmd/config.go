package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sheetfolio configuration file values.",
	Long: `Create, edit, display, and delete the sheetfolio configuration file.

The configuration selects the data source and how the page is served:
- sheet.spreadsheet_id / sheet.endpoint / sheet.workbook / sheet.data_file
- fetch.timeout / fetch.user_agent
- page.template / page.placeholder_image
- server.port / server.static_dir
- history.db
- log.level / log.format

Every key can be overridden by an environment variable with the SHEETFOLIO_
prefix, e.g. SHEETFOLIO_SHEET_SPREADSHEET_ID. A .env file in the working
directory is loaded first.`,
	Example: `
  # Create default config in $HOME/.sheetfolio.yaml
  sheetfolio config create

  # Show active config and source file
  sheetfolio config show

  # Open active config in editor (creates example if missing)
  sheetfolio config edit

  # Delete active config file
  sheetfolio config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
