package store

import (
	"context"
	"sync"

	"ci-reaper/src/contracts"
)

// MemoryStore keeps the most recent reports in process.
// Used when no Postgres DSN is configured, and by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	reports  []contracts.CycleReport // oldest first
	seen     map[string]bool
}

// NewMemoryStore creates an in-memory store retaining at most capacity reports.
// A non-positive capacity selects DefaultHistory.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultHistory
	}
	return &MemoryStore{
		capacity: capacity,
		seen:     make(map[string]bool),
	}
}

// SaveCycle implements Store.
func (s *MemoryStore) SaveCycle(ctx context.Context, report *contracts.CycleReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[report.CycleID] {
		return nil
	}
	s.seen[report.CycleID] = true
	s.reports = append(s.reports, cloneReport(report))

	if over := len(s.reports) - s.capacity; over > 0 {
		for _, old := range s.reports[:over] {
			delete(s.seen, old.CycleID)
		}
		s.reports = append([]contracts.CycleReport(nil), s.reports[over:]...)
	}
	return nil
}

// RecentCycles implements Store.
func (s *MemoryStore) RecentCycles(ctx context.Context, limit int) ([]contracts.CycleReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.reports) {
		limit = len(s.reports)
	}

	result := make([]contracts.CycleReport, 0, limit)
	for i := len(s.reports) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, cloneReport(&s.reports[i]))
	}
	return result, nil
}

// Close closes the store (no-op for memory store).
func (s *MemoryStore) Close() error {
	return nil
}

func cloneReport(r *contracts.CycleReport) contracts.CycleReport {
	c := *r
	c.Checks = make([]contracts.CheckResult, len(r.Checks))
	for i, check := range r.Checks {
		check.Cancellations = append([]contracts.Cancellation(nil), check.Cancellations...)
		c.Checks[i] = check
	}
	return c
}
