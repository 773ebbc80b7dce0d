// Package contracts defines the records the reaper emits about each cycle.
package contracts

import "time"

// Reasons a build is cancelled.
const (
	// ReasonSuperseded marks a running build older than the latest build on the branch.
	ReasonSuperseded = "superseded"
	// ReasonJobFailed marks a running build that already contains a failed job.
	ReasonJobFailed = "job_failed"
)

// Cancellation records one cancel decision taken by a prober.
// Published to: reaper.cancellations
// Key: {provider}/{repository}
type Cancellation struct {
	Provider    string `json:"provider"`
	Repository  string `json:"repository"`
	Branch      string `json:"branch"`
	BuildID     string `json:"build_id"`
	BuildNumber string `json:"build_number"`
	Reason      string `json:"reason"`
	// Detail is a short human-readable explanation (e.g. the failing job status).
	Detail string `json:"detail,omitempty"`
	// DryRun is set when the decision was logged but the cancel call was not issued.
	DryRun    bool      `json:"dry_run"`
	Timestamp time.Time `json:"timestamp"`
}

// Outcome is the terminal state of a cycle.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeTimedOut  Outcome = "timed_out"
	// OutcomeAborted means the process was shutting down mid-cycle.
	OutcomeAborted Outcome = "aborted"
)

// CheckResult is the outcome of one prober against one repository.
type CheckResult struct {
	Provider      string         `json:"provider"`
	Repository    string         `json:"repository"`
	Cancellations []Cancellation `json:"cancellations,omitempty"`
	Error         string         `json:"error,omitempty"`
	DurationMS    int64          `json:"duration_ms"`
}

// Failed reports whether the check ended with an error.
func (c CheckResult) Failed() bool {
	return c.Error != ""
}

// CycleReport aggregates every check of a single cycle.
// Published to: reaper.cycles
// Key: {cycle_id}
type CycleReport struct {
	CycleID    string        `json:"cycle_id"`
	Branch     string        `json:"branch"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Outcome    Outcome       `json:"outcome"`
	Checks     []CheckResult `json:"checks"`
	// Pending counts checks still in flight when the deadline expired.
	Pending int  `json:"pending"`
	DryRun  bool `json:"dry_run"`
}

// FailedChecks returns the number of checks that ended with an error.
func (r *CycleReport) FailedChecks() int {
	n := 0
	for _, c := range r.Checks {
		if c.Failed() {
			n++
		}
	}
	return n
}

// Cancellations flattens the cancellations of every check.
func (r *CycleReport) Cancellations() []Cancellation {
	var out []Cancellation
	for _, c := range r.Checks {
		out = append(out, c.Cancellations...)
	}
	return out
}

// Duration is the wall-clock time the coordinator spent on the cycle.
func (r *CycleReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Topic names the reaper publishes to.
const (
	// TopicCycles carries one CycleReport per cycle.
	TopicCycles = "reaper.cycles"

	// TopicCancellations carries one Cancellation per cancel decision.
	TopicCancellations = "reaper.cancellations"
)
