package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ci-reaper/src/logger"
	"ci-reaper/src/store"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent cycle reports from Postgres",
	Long: `Query the Postgres cycle history, newest first.

Requires POSTGRES_DSN. The history is an audit trail only; the reaper never
reads it back when deciding what to cancel.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.PostgresDSN == "" {
			return errors.New("history requires POSTGRES_DSN (or postgres_dsn in the config file)")
		}

		ctx := context.Background()
		st, err := store.NewPostgresStore(ctx, appConfig.PostgresDSN)
		if err != nil {
			return err
		}
		defer st.Close()

		return showHistory(ctx, os.Stdout, st, historyLimit, historyJSON, newLogger(appConfig))
	},
}

func showHistory(ctx context.Context, w io.Writer, st store.Store, limit int, asJSON bool, log logger.Logger) error {
	reports, err := st.RecentCycles(ctx, limit)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	if len(reports) == 0 {
		log.Info("No cycles recorded yet")
		return nil
	}
	for i := range reports {
		printReport(w, &reports[i])
	}
	return nil
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of cycles to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print reports as JSON")
}
