// Package mcp exposes the reaper to LLM agents over the Model Context Protocol.
package mcp

import "ci-reaper/src/contracts"

// DefaultListLimit is how many cycles list_cycles returns by default.
const DefaultListLimit = 10

// CycleSummary is the compact form of a cycle returned by list_cycles.
// Use get_cycle for per-check detail.
type CycleSummary struct {
	CycleID       string            `json:"cycle_id"`
	Branch        string            `json:"branch"`
	StartedAt     string            `json:"started_at"`
	DurationMS    int64             `json:"duration_ms"`
	Outcome       contracts.Outcome `json:"outcome"`
	Checks        int               `json:"checks"`
	FailedChecks  int               `json:"failed_checks"`
	Pending       int               `json:"pending"`
	Cancellations int               `json:"cancellations"`
	DryRun        bool              `json:"dry_run"`
}

// Summarize reduces a report to its summary.
func Summarize(r *contracts.CycleReport) CycleSummary {
	return CycleSummary{
		CycleID:       r.CycleID,
		Branch:        r.Branch,
		StartedAt:     r.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		DurationMS:    r.Duration().Milliseconds(),
		Outcome:       r.Outcome,
		Checks:        len(r.Checks),
		FailedChecks:  r.FailedChecks(),
		Pending:       r.Pending,
		Cancellations: len(r.Cancellations()),
		DryRun:        r.DryRun,
	}
}

// RepositoryInfo is returned by parse_repository.
type RepositoryInfo struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
}
