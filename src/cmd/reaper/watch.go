package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ci-reaper/src/pipeline"
)

var watchGroup string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail cycle reports and cancellations from Redpanda",
	Long: `Subscribe to the reaper.cycles and reaper.cancellations topics and print
every event as it arrives. Requires REDPANDA_BROKERS; with the in-memory
broker there is no other process to watch.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pipeline.DetectMode(appConfig) != pipeline.DistributedMode {
			return errors.New("watch requires REDPANDA_BROKERS (or redpanda_brokers in the config file)")
		}

		log := newLogger(appConfig)
		ctx, cancel := signalContext(log)
		defer cancel()

		p, err := pipeline.Open(ctx, appConfig, log)
		if err != nil {
			return err
		}
		defer p.Close()

		err = p.Watch(ctx, watchGroup, func(e pipeline.Event) {
			switch {
			case e.Cycle != nil:
				printReport(os.Stdout, e.Cycle)
			case e.Cancellation != nil:
				c := e.Cancellation
				fmt.Printf("%s  %s %s #%s cancelled (%s)\n",
					c.Timestamp.Format("15:04:05"), c.Provider, c.Repository, c.BuildNumber, c.Reason)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchGroup, "group", "reaper-watch", "consumer group ID")
}
