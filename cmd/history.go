package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sheetfolio/config"
	"sheetfolio/history"
	"sheetfolio/storage"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded loads from the history database",
	Long: `List the most recent loads recorded by serve and build, newest first.

Each load shows its per-sheet outcome: ok, fetch_failed or decode_empty.`,
	Example: `
  # Show the last 10 loads
  sheetfolio history --limit 10 --db ./sheetfolio.db
`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{"db": config.KeyHistoryDB})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyLimit <= 0 {
			return fmt.Errorf("--limit must be > 0")
		}
		dbPath := strings.TrimSpace(viper.GetString(config.KeyHistoryDB))
		if dbPath == "" {
			return fmt.Errorf("no history database configured (set history.db or pass --db)")
		}

		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListLoads(commandContext(cmd), historyLimit)
		if err != nil {
			return err
		}
		return printHistory(cmd.OutOrStdout(), runs)
	},
}

func printHistory(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No loads recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tMODE\tDURATION\tSOURCES")
	for _, run := range runs {
		parts := make([]string, 0, len(run.Sources))
		for _, source := range run.Sources {
			parts = append(parts, fmt.Sprintf("%s=%s(%d)", source.Source, source.Status, source.Records))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Duration.Round(time.Millisecond),
			strings.Join(parts, " "),
		)
	}
	return tw.Flush()
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.PersistentFlags().String("db", "", "Path to SQLite history database (default: history.db from config)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of loads to show")
}
