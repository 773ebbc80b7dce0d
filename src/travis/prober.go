package travis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ci-reaper/src/contracts"
	"ci-reaper/src/logger"
	"ci-reaper/src/provider"
)

// Name is the provider name used in reports.
const Name = "travis"

// Prober implements provider.Prober for Travis CI.
type Prober struct {
	client *Client
	branch string
	dryRun bool
	logger logger.Logger
}

var _ provider.Prober = (*Prober)(nil)

// NewProber creates a Travis prober for the tracked branch.
// With dryRun set, decisions are reported but no cancel calls are issued.
func NewProber(client *Client, branch string, dryRun bool, log logger.Logger) *Prober {
	return &Prober{
		client: client,
		branch: branch,
		dryRun: dryRun,
		logger: log,
	}
}

// Name returns "travis".
func (p *Prober) Name() string {
	return Name
}

// candidate is a tracked-branch build with its parsed number.
type candidate struct {
	Build
	number int
}

// Probe cancels every running build on the tracked branch that is older than the
// latest one, and the latest one too if one of its jobs has already failed.
func (p *Prober) Probe(ctx context.Context, repo provider.Repository) ([]contracts.Cancellation, error) {
	list, err := p.client.ListBuilds(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("listing builds for %s: %w", repo, err)
	}

	candidates := p.branchBuilds(repo, list)
	latest := latestNumber(candidates)

	var batch provider.Batch
	for _, c := range candidates {
		if c.State.IsTerminal() {
			continue
		}
		if c.number == latest {
			batch.Go(func() (*contracts.Cancellation, error) {
				return p.cancelIfJobsFailed(ctx, repo, c.Build)
			})
			continue
		}
		batch.Go(func() (*contracts.Cancellation, error) {
			detail := fmt.Sprintf("superseded by build %d", latest)
			p.logger.Info("[Travis] cancelling %s build %s (%s) as it's not the latest", repo, c.Number, c.State)
			return p.cancel(ctx, repo, c.Build, contracts.ReasonSuperseded, detail)
		})
	}

	return batch.Wait()
}

// branchBuilds keeps the builds whose commit is on the tracked branch. Builds whose
// commit is missing from the response, or whose number is not an integer, are dropped.
func (p *Prober) branchBuilds(repo provider.Repository, list *BuildList) []candidate {
	commits := make(map[int64]Commit, len(list.Commits))
	for _, c := range list.Commits {
		commits[c.ID] = c
	}

	var out []candidate
	for _, b := range list.Builds {
		commit, ok := commits[b.CommitID]
		if !ok {
			p.logger.Debug("[Travis] %s build %s: commit %d not in response, skipping", repo, b.Number, b.CommitID)
			continue
		}
		if commit.Branch != p.branch {
			continue
		}
		n, err := strconv.Atoi(b.Number)
		if err != nil {
			p.logger.Debug("[Travis] %s build %d: unparseable number %q, skipping", repo, b.ID, b.Number)
			continue
		}
		out = append(out, candidate{Build: b, number: n})
	}
	return out
}

// latestNumber returns the greatest build number, or -1 when there are no builds.
func latestNumber(candidates []candidate) int {
	latest := -1
	for _, c := range candidates {
		if c.number > latest {
			latest = c.number
		}
	}
	return latest
}

// cancelIfJobsFailed fetches the latest build's jobs and cancels it only when one
// of them already failed; a healthy latest build is left running.
func (p *Prober) cancelIfJobsFailed(ctx context.Context, repo provider.Repository, b Build) (*contracts.Cancellation, error) {
	detail, err := p.client.GetBuild(ctx, b.ID)
	if err != nil {
		err = fmt.Errorf("fetching build %s of %s: %w", b.Number, repo, err)
		p.logger.Error("[Travis] %v", err)
		return nil, err
	}

	for _, job := range detail.Jobs {
		if !job.State.IsFailure() {
			continue
		}
		p.logger.Info("[Travis] cancelling top %s build %s as job %s is %s", repo, b.Number, job.Number, job.State)
		return p.cancel(ctx, repo, b, contracts.ReasonJobFailed, fmt.Sprintf("job %s %s", job.Number, job.State))
	}

	p.logger.Debug("[Travis] %s build %s is the latest and healthy", repo, b.Number)
	return nil, nil
}

func (p *Prober) cancel(ctx context.Context, repo provider.Repository, b Build, reason, detail string) (*contracts.Cancellation, error) {
	record := &contracts.Cancellation{
		Provider:    Name,
		Repository:  repo.String(),
		Branch:      p.branch,
		BuildID:     strconv.FormatInt(b.ID, 10),
		BuildNumber: b.Number,
		Reason:      reason,
		Detail:      detail,
		DryRun:      p.dryRun,
		Timestamp:   time.Now().UTC(),
	}

	if p.dryRun {
		p.logger.Info("[Travis] dry-run: would cancel %s build %s", repo, b.Number)
		return record, nil
	}

	if err := p.client.CancelBuild(ctx, b.ID); err != nil {
		err = fmt.Errorf("cancelling build %s of %s: %w", b.Number, repo, err)
		p.logger.Error("[Travis] %v", err)
		return nil, err
	}
	return record, nil
}
