package main

import (
	"context"
	"fmt"

	"ci-reaper/src/appveyor"
	"ci-reaper/src/config"
	"ci-reaper/src/logger"
	"ci-reaper/src/pipeline"
	"ci-reaper/src/provider"
	"ci-reaper/src/reaper"
	"ci-reaper/src/scheduler"
	"ci-reaper/src/travis"
)

// newCoordinator builds the Travis and AppVeyor probers and the coordinator
// that fans a cycle out over them.
func newCoordinator(cfg *config.Config, log logger.Logger) (*reaper.Coordinator, error) {
	repos, err := cfg.Repos()
	if err != nil {
		return nil, err
	}

	travisClient := travis.NewClient(cfg.TravisToken, cfg.TravisBaseURL, nil, log)
	appVeyorClient := appveyor.NewClient(cfg.AppVeyorToken, cfg.AppVeyorBaseURL, nil, log)
	log.Debug("[Reaper] Travis API %s, AppVeyor API %s", travisClient.BaseURL(), appVeyorClient.BaseURL())

	return reaper.NewCoordinator(reaper.Options{
		Probers: []provider.Prober{
			travis.NewProber(travisClient, cfg.Branch, cfg.DryRun, log),
			appveyor.NewProber(appVeyorClient, cfg.AppVeyorAccount, cfg.Branch, cfg.DryRun, log),
		},
		Repositories: repos,
		Branch:       cfg.Branch,
		Timeout:      cfg.CycleTimeout.Duration,
		Concurrency:  cfg.Concurrency,
		DryRun:       cfg.DryRun,
		Logger:       log,
	}), nil
}

// newLoop validates cfg and assembles the scheduler with its reporting pipeline.
// The caller closes the returned pipeline.
func newLoop(ctx context.Context, cfg *config.Config, log logger.Logger) (*scheduler.Loop, *pipeline.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}

	coordinator, err := newCoordinator(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	p, err := pipeline.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	log.Info("[Reaper] watching %d repositories on branch %s (%s mode, dry-run %v)",
		len(cfg.Repositories), cfg.Branch, p.Mode(), cfg.DryRun)

	return scheduler.New(coordinator, p, cfg.Interval.Duration, log), p, nil
}
