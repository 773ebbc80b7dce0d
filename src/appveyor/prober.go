package appveyor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ci-reaper/src/contracts"
	"ci-reaper/src/logger"
	"ci-reaper/src/provider"
)

// Name is the provider name used in reports.
const Name = "appveyor"

// Prober implements provider.Prober for AppVeyor.
type Prober struct {
	client  *Client
	account string
	branch  string
	dryRun  bool
	logger  logger.Logger
}

var _ provider.Prober = (*Prober)(nil)

// NewProber creates an AppVeyor prober. An empty account means each
// repository's owner is used as the AppVeyor account name.
func NewProber(client *Client, account, branch string, dryRun bool, log logger.Logger) *Prober {
	return &Prober{
		client:  client,
		account: account,
		branch:  branch,
		dryRun:  dryRun,
		logger:  log,
	}
}

// Name returns "appveyor".
func (p *Prober) Name() string {
	return Name
}

// claims ensures a build version is cancelled at most once per probe, even
// when both checks select it.
type claims struct {
	mu       sync.Mutex
	versions map[string]string // version -> claiming check
}

func (c *claims) claim(version, check string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if owner, ok := c.versions[version]; ok {
		return owner, false
	}
	c.versions[version] = check
	return check, true
}

// Probe runs the history check and the latest-build check concurrently and joins
// them. The probe fails if either check fails.
func (p *Prober) Probe(ctx context.Context, repo provider.Repository) ([]contracts.Cancellation, error) {
	account := p.account
	if account == "" {
		account = repo.Owner
	}
	cl := &claims{versions: make(map[string]string)}

	// Each check keeps its own result so a failing one never cancels the other.
	var (
		g                     errgroup.Group
		historyC, latestC     []contracts.Cancellation
		historyErr, latestErr error
	)
	g.Go(func() error {
		historyC, historyErr = p.checkHistory(ctx, repo, account, cl)
		return nil
	})
	g.Go(func() error {
		latestC, latestErr = p.checkLatest(ctx, repo, account, cl)
		return nil
	})
	g.Wait()

	return append(historyC, latestC...), errors.Join(historyErr, latestErr)
}

// checkHistory cancels every running build older than the newest of the last
// HistoryRecords builds on the branch. The newest build is never touched here.
func (p *Prober) checkHistory(ctx context.Context, repo provider.Repository, account string, cl *claims) ([]contracts.Cancellation, error) {
	history, err := p.client.History(ctx, account, repo.Name, p.branch, HistoryRecords)
	if err != nil {
		return nil, fmt.Errorf("fetching history for %s: %w", repo, err)
	}

	latest := 0
	for _, b := range history.Builds {
		if b.BuildNumber > latest {
			latest = b.BuildNumber
		}
	}

	var batch provider.Batch
	for _, b := range history.Builds {
		if b.Status.IsTerminal() || b.BuildNumber >= latest {
			continue
		}
		if owner, ok := cl.claim(b.Version, "history"); !ok {
			p.logger.Debug("[AppVeyor] %s build %d already cancelled by %s check", repo, b.BuildNumber, owner)
			continue
		}
		batch.Go(func() (*contracts.Cancellation, error) {
			p.logger.Info("[AppVeyor] cancelling %s build %d as it's not the latest", repo, b.BuildNumber)
			return p.cancel(ctx, repo, account, b, contracts.ReasonSuperseded, fmt.Sprintf("superseded by build %d", latest))
		})
	}
	return batch.Wait()
}

// checkLatest cancels the latest branch build as soon as one of its jobs is found
// in a status other than success, queued or running. Jobs after the first such
// job are not inspected.
func (p *Prober) checkLatest(ctx context.Context, repo provider.Repository, account string, cl *claims) ([]contracts.Cancellation, error) {
	last, err := p.client.LastBuild(ctx, account, repo.Name, p.branch)
	if err != nil {
		return nil, fmt.Errorf("fetching latest build for %s: %w", repo, err)
	}

	b := last.Build
	if b.Status.IsTerminal() {
		return nil, nil
	}

	for _, job := range b.Jobs {
		if job.Status.IsHealthy() {
			continue
		}
		if owner, ok := cl.claim(b.Version, "latest"); !ok {
			p.logger.Debug("[AppVeyor] %s build %d already cancelled by %s check", repo, b.BuildNumber, owner)
			return nil, nil
		}
		p.logger.Info("[AppVeyor] cancelling %s build %d as a job is %s", repo, b.BuildNumber, job.Status)
		c, err := p.cancel(ctx, repo, account, b, contracts.ReasonJobFailed, fmt.Sprintf("job %s %s", job.Name, job.Status))
		if c == nil {
			return nil, err
		}
		return []contracts.Cancellation{*c}, err
	}
	return nil, nil
}

func (p *Prober) cancel(ctx context.Context, repo provider.Repository, account string, b Build, reason, detail string) (*contracts.Cancellation, error) {
	record := &contracts.Cancellation{
		Provider:    Name,
		Repository:  repo.String(),
		Branch:      p.branch,
		BuildID:     strconv.FormatInt(b.BuildID, 10),
		BuildNumber: strconv.Itoa(b.BuildNumber),
		Reason:      reason,
		Detail:      detail,
		DryRun:      p.dryRun,
		Timestamp:   time.Now().UTC(),
	}

	if p.dryRun {
		p.logger.Info("[AppVeyor] dry-run: would cancel %s build %d (%s)", repo, b.BuildNumber, b.Version)
		return record, nil
	}

	if err := p.client.CancelBuild(ctx, account, repo.Name, b.Version); err != nil {
		err = fmt.Errorf("cancelling build %s of %s: %w", b.Version, repo, err)
		p.logger.Error("[AppVeyor] %v", err)
		return nil, err
	}
	return record, nil
}
