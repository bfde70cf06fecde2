package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sheetfolio/config"
)

var (
	clearPromptInput  io.Reader = os.Stdin
	clearPromptOutput io.Writer = os.Stdout
)

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the history database file",
	Long: `Destructive history cleanup command.

This command deletes the complete SQLite history file. A new one is created
on the next recorded load. Before deletion, an interactive prompt requires
typing exactly "Y".`,
	Example: `
  # Delete the history database (requires interactive confirmation)
  sheetfolio history clear --db ./sheetfolio.db
`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{"db": config.KeyHistoryDB})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := strings.TrimSpace(viper.GetString(config.KeyHistoryDB))
		if dbPath == "" {
			return fmt.Errorf("no history database configured (set history.db or pass --db)")
		}

		confirmed, err := confirmClearPrompt(clearPromptInput, clearPromptOutput, dbPath)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("clear aborted: confirmation was not 'Y'")
		}

		if err := removeDatabaseFile(dbPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted history database: %s\n", dbPath)
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
}

func confirmClearPrompt(input io.Reader, output io.Writer, path string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("clear confirmation input is not available")
	}
	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete history database %q? Type Y to confirm: ", path); err != nil {
		return false, fmt.Errorf("write clear confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(line) == "Y", nil
		}
		return false, fmt.Errorf("read clear confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("history database not found: %s", path)
		}
		return fmt.Errorf("stat history database: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("history database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete history database: %w", err)
	}
	return nil
}
