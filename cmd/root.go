/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sheetfolio/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sheetfolio",
	Short: "Render a portfolio page from the sheets of a public spreadsheet.",
	Long: `
**********************************************
*              SHEETFOLIO                    *
**********************************************

This CLI fetches the About, SocialMedia, Portfolio and Achievements sheets of a
publicly shared spreadsheet, decodes them and renders them into a static page.

Every sheet is loaded independently: a sheet that cannot be fetched or decoded
renders as an empty section while the others are shown normally.

Data sources:
- gviz JSON export of a public spreadsheet (default)
- local Excel workbook (.xlsx) with the same four sheets
- static data.json as written by "export --format json"
`,
	Example: `
  # Create configuration file
  sheetfolio config create

  # Serve the page, loading the sheets on every request
  sheetfolio serve --port 8080

  # Render the page once into a file
  sheetfolio build --output ./index.html

  # Export the decoded data as Excel workbook or JSON
  sheetfolio export --output ./portfolio.xlsx
  sheetfolio export --output ./data.json

  # Show recent loads recorded in the history database
  sheetfolio history --limit 10
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.sheetfolio.yaml, then ./.sheetfolio.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override: debug|info|warn|error")
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".sheetfolio" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sheetfolio")
	}

	// SHEETFOLIO_SHEET_SPREADSHEET_ID overrides sheet.spreadsheet_id.
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment; create one with: sheetfolio config create")
	}
}
