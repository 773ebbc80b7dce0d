package provider

import (
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"ci-reaper/src/contracts"
)

// Batch runs cancellation tasks concurrently and collects every outcome.
// Tasks record their errors instead of returning them to the group, so one
// failed cancel never hides another.
type Batch struct {
	g             errgroup.Group
	mu            sync.Mutex
	cancellations []contracts.Cancellation
	errs          []error
}

// Go starts fn in its own goroutine. fn returns nil when it decided not to cancel.
func (b *Batch) Go(fn func() (*contracts.Cancellation, error)) {
	b.g.Go(func() error {
		c, err := fn()

		b.mu.Lock()
		defer b.mu.Unlock()
		if c != nil {
			b.cancellations = append(b.cancellations, *c)
		}
		if err != nil {
			b.errs = append(b.errs, err)
		}
		return nil
	})
}

// Wait blocks until every task has finished.
func (b *Batch) Wait() ([]contracts.Cancellation, error) {
	b.g.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancellations, errors.Join(b.errs...)
}
