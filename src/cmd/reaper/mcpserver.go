package main

import (
	"os"

	"github.com/spf13/cobra"

	"ci-reaper/src/logger"
	"ci-reaper/src/mcp"
)

var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server [owner/name...]",
	Short: "Serve reaper tools over the Model Context Protocol (stdio)",
	Long: `Expose the reaper to MCP clients over stdin/stdout. Tools:

  run_cycle         run one cycle now and return its report
  list_cycles       recent cycle summaries
  get_cycle         full report of one cycle
  parse_repository  validate an owner/name identifier

Logs go to stderr; stdout carries the protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewWriterLogger(os.Stderr, appConfig.Verbose)
		ctx, cancel := signalContext(log)
		defer cancel()

		loop, p, err := newLoop(ctx, appConfig, log)
		if err != nil {
			return err
		}
		defer p.Close()

		return mcp.NewServer(loop, p.Store(), version).Run()
	},
}
