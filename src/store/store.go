// Package store keeps an audit history of cycle reports.
// Nothing read from a store ever feeds back into cancel decisions.
package store

import (
	"context"

	"ci-reaper/src/contracts"
)

// DefaultHistory is how many reports the in-memory store retains.
const DefaultHistory = 100

// Store persists cycle reports and the cancellations they contain.
type Store interface {
	// SaveCycle records a finished cycle. Saving the same cycle ID twice is a no-op.
	SaveCycle(ctx context.Context, report *contracts.CycleReport) error

	// RecentCycles returns up to limit reports, newest first.
	RecentCycles(ctx context.Context, limit int) ([]contracts.CycleReport, error)

	// Close closes the store connection
	Close() error
}
