// Package reaper runs one reaping cycle: every prober against every tracked
// repository, concurrently, under a single deadline.
package reaper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ci-reaper/src/contracts"
	"ci-reaper/src/logger"
	"ci-reaper/src/provider"
)

// Options configures a Coordinator.
type Options struct {
	Probers      []provider.Prober
	Repositories []provider.Repository
	Branch       string
	// Timeout bounds the whole cycle, across all providers and repositories.
	Timeout time.Duration
	// Concurrency caps simultaneous checks; 0 means one goroutine per check.
	Concurrency int
	DryRun      bool
	Logger      logger.Logger
}

// Coordinator fans a cycle out over all probers and repositories.
// It holds no mutable state and may be shared.
type Coordinator struct {
	probers     []provider.Prober
	repos       []provider.Repository
	branch      string
	timeout     time.Duration
	concurrency int
	dryRun      bool
	logger      logger.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(opts Options) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Coordinator{
		probers:     opts.Probers,
		repos:       opts.Repositories,
		branch:      opts.Branch,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		dryRun:      opts.DryRun,
		logger:      log,
	}
}

// Checks returns the number of checks in one cycle.
func (c *Coordinator) Checks() int {
	return len(c.probers) * len(c.repos)
}

// results collects check outcomes as they finish. Checks that finish after
// the cycle was abandoned are appended but never read.
type results struct {
	mu     sync.Mutex
	checks []contracts.CheckResult
	late   bool // some check finished after the deadline
}

func (r *results) add(res contracts.CheckResult, late bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, res)
	r.late = r.late || late
}

func (r *results) anyLate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.late
}

func (r *results) snapshot() []contracts.CheckResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]contracts.CheckResult(nil), r.checks...)
}

// RunCycle runs every check concurrently and waits for all of them or for the
// deadline, whichever comes first. A failing check never affects the others.
// On deadline the cycle is abandoned: in-flight requests are aborted through the
// cycle context and checks that have not reported yet are counted as Pending.
func (c *Coordinator) RunCycle(ctx context.Context) *contracts.CycleReport {
	started := time.Now().UTC()
	report := &contracts.CycleReport{
		CycleID:   fmt.Sprintf("cycle-%d", started.UnixNano()),
		Branch:    c.branch,
		StartedAt: started,
		DryRun:    c.dryRun,
	}

	c.logger.Info("[Coordinator] starting %s: %d checks, deadline %s", report.CycleID, c.Checks(), c.timeout)

	cycleCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var res results
	done := make(chan struct{})
	go func() {
		defer close(done)
		var g errgroup.Group
		if c.concurrency > 0 {
			g.SetLimit(c.concurrency)
		}
		for _, p := range c.probers {
			for _, repo := range c.repos {
				g.Go(func() error {
					result := c.check(cycleCtx, p, repo)
					res.add(result, cycleCtx.Err() != nil)
					return nil
				})
			}
		}
		g.Wait()
	}()

	finished := false
	select {
	case <-done:
		finished = true
	case <-cycleCtx.Done():
	}
	// Checks woken by the deadline finish at once, so done may close right
	// after it. Such a cycle still counts as abandoned.
	report.Outcome = cycleOutcome(ctx, cycleCtx, finished && !res.anyLate())

	report.Checks = res.snapshot()
	report.Pending = c.Checks() - len(report.Checks)
	report.FinishedAt = time.Now().UTC()
	return report
}

// cycleOutcome reports completed when every check finished before the
// deadline, even if the deadline has passed since. Otherwise the cycle timed
// out, or was aborted when the parent context ended first.
func cycleOutcome(parent, cycleCtx context.Context, onTime bool) contracts.Outcome {
	if onTime {
		return contracts.OutcomeCompleted
	}
	if parent.Err() == nil && errors.Is(cycleCtx.Err(), context.DeadlineExceeded) {
		return contracts.OutcomeTimedOut
	}
	return contracts.OutcomeAborted
}

// check runs one prober against one repository and records its outcome.
func (c *Coordinator) check(ctx context.Context, p provider.Prober, repo provider.Repository) contracts.CheckResult {
	start := time.Now()
	cancellations, err := p.Probe(ctx, repo)

	result := contracts.CheckResult{
		Provider:      p.Name(),
		Repository:    repo.String(),
		Cancellations: cancellations,
		DurationMS:    time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Error = err.Error()
		if ctx.Err() != nil {
			c.logger.Debug("[Coordinator] %s %s finished after the cycle was abandoned: %v", p.Name(), repo, err)
		} else {
			c.logger.Error("[Coordinator] %s check of %s failed: %v", p.Name(), repo, err)
		}
	}
	return result
}
