package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [owner/name...]",
	Short: "Run reaping cycles until interrupted",
	Long: `Run a cycle immediately and then one every --interval, measured from the
start of the previous cycle. A cycle that exceeds --timeout is abandoned and
logged as timed out; the loop carries on.

Example:
  reaper run -t $TRAVIS_TOKEN -a $APPVEYOR_TOKEN -b auto rust-lang/cargo rust-lang/rust`,
	RunE: runLoop,
}

func runLoop(cmd *cobra.Command, args []string) error {
	log := newLogger(appConfig)
	ctx, cancel := signalContext(log)
	defer cancel()

	loop, p, err := newLoop(ctx, appConfig, log)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("[Reaper] stopped")
	return nil
}

var onceJSON bool

var onceCmd = &cobra.Command{
	Use:   "once [owner/name...]",
	Short: "Run a single reaping cycle and print its report",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(appConfig)
		ctx, cancel := signalContext(log)
		defer cancel()

		loop, p, err := newLoop(ctx, appConfig, log)
		if err != nil {
			return err
		}
		defer p.Close()

		report := loop.RunOnce(ctx)

		if onceJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(os.Stdout, report)
		return nil
	},
}

func init() {
	onceCmd.Flags().BoolVar(&onceJSON, "json", false, "print the report as JSON")
}
