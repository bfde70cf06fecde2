package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"sheetfolio/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the effective configuration and the resolved config file path.

Values merge defaults, the config file and SHEETFOLIO_ environment variables.
This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  sheetfolio config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Invalid config:", err)
			return nil
		}
		return printConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), *cfg)
	},
}

func printConfig(w io.Writer, configPath string, cfg config.Config) error {
	if configPath != "" {
		fmt.Fprintln(w, "Config file loaded from:", configPath)
	} else {
		fmt.Fprintln(w, "No config file loaded; showing defaults and environment.")
	}
	fmt.Fprintln(w, "Configuration:")

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return encoder.Close()
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
