package provider

import (
	"context"

	"ci-reaper/src/contracts"
)

// Prober defines the interface for a CI platform's cancellation policy.
type Prober interface {
	// Name returns the provider name (e.g., "travis", "appveyor").
	Name() string

	// Probe inspects one repository on the tracked branch and cancels stale
	// or doomed builds. The returned cancellations are those issued (or
	// planned, in dry-run mode) even when an error is also returned.
	Probe(ctx context.Context, repo Repository) ([]contracts.Cancellation, error)
}
