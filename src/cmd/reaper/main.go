// Package main provides the reaper CLI: it cancels CI builds that can no
// longer matter on Travis CI and AppVeyor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ci-reaper/src/config"
	"ci-reaper/src/logger"
	"ci-reaper/src/provider"
)

var version = "dev"

// flags holds command-line values. Only flags the user actually set
// override the config file and environment.
type flags struct {
	configPath      string
	travisToken     string
	appVeyorToken   string
	branch          string
	appVeyorAccount string
	interval        time.Duration
	timeout         time.Duration
	concurrency     int
	dryRun          bool
	verbose         bool
}

var (
	cliFlags  flags
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reaper [owner/name...]",
	Short: "Cancel superseded and already-failed CI builds",
	Long: `reaper watches a branch on Travis CI and AppVeyor and cancels builds
that can no longer matter:

- running builds older than the newest build on the branch
- the newest build, once one of its jobs has already failed

It runs a cycle over every repository at a fixed interval, each cycle bounded
by a deadline. Without a subcommand it behaves like 'reaper run'.

Reports go to an in-memory history by default. Set REDPANDA_BROKERS to publish
them to Redpanda and POSTGRES_DSN to archive them in Postgres.`,
	Args:          cobra.ArbitraryArgs,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cliFlags.configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd, cfg, &cliFlags, args)
		appConfig = cfg
		return nil
	},
	RunE: runLoop,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cliFlags.configPath, "config", "", "path to a TOML config file")
	pf.StringVarP(&cliFlags.travisToken, "travis", "t", "", "Travis CI API token (env TRAVIS_TOKEN)")
	pf.StringVarP(&cliFlags.appVeyorToken, "appveyor", "a", "", "AppVeyor API token (env APPVEYOR_TOKEN)")
	pf.StringVarP(&cliFlags.branch, "branch", "b", "", "branch to watch (env REAPER_BRANCH)")
	pf.StringVar(&cliFlags.appVeyorAccount, "appveyor-account", "", "AppVeyor account name, defaults to the repository owner (env APPVEYOR_ACCOUNT)")
	pf.DurationVar(&cliFlags.interval, "interval", config.DefaultInterval, "time between cycle starts")
	pf.DurationVar(&cliFlags.timeout, "timeout", config.DefaultCycleTimeout, "deadline for one cycle")
	pf.IntVar(&cliFlags.concurrency, "concurrency", 0, "max concurrent checks per cycle (0 = unbounded)")
	pf.BoolVar(&cliFlags.dryRun, "dry-run", false, "decide and report cancellations without issuing them")
	pf.BoolVarP(&cliFlags.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd, onceCmd, watchCmd, historyCmd, mcpServerCmd)
}

// applyFlags overlays explicitly set flags and positional repositories on cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *flags, args []string) {
	changed := cmd.Flags().Changed
	if changed("travis") {
		cfg.TravisToken = f.travisToken
	}
	if changed("appveyor") {
		cfg.AppVeyorToken = f.appVeyorToken
	}
	if changed("branch") {
		cfg.Branch = f.branch
	}
	if changed("appveyor-account") {
		cfg.AppVeyorAccount = f.appVeyorAccount
	}
	if changed("interval") {
		cfg.Interval = config.Duration{Duration: f.interval}
	}
	if changed("timeout") {
		cfg.CycleTimeout = config.Duration{Duration: f.timeout}
	}
	if changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if len(args) > 0 {
		cfg.Repositories = args
	}
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewConsoleLogger(cfg.Verbose)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(log logger.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			log.Info("Shutdown signal received, stopping...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", provider.WrapError(err))
		os.Exit(1)
	}
}
