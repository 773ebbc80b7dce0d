package provider

import (
	"errors"
	"strings"
	"testing"

	"ci-reaper/src/contracts"
)

func TestBatch_CollectsAllOutcomes(t *testing.T) {
	var b Batch
	errA := errors.New("cancel 11 failed")
	errB := errors.New("cancel 12 failed")

	b.Go(func() (*contracts.Cancellation, error) {
		return &contracts.Cancellation{BuildNumber: "10"}, nil
	})
	b.Go(func() (*contracts.Cancellation, error) { return nil, errA })
	b.Go(func() (*contracts.Cancellation, error) { return nil, errB })
	b.Go(func() (*contracts.Cancellation, error) { return nil, nil })

	cancellations, err := b.Wait()

	if len(cancellations) != 1 || cancellations[0].BuildNumber != "10" {
		t.Errorf("cancellations = %+v", cancellations)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("expected both errors to be kept, got %v", err)
	}
	if !strings.Contains(err.Error(), "cancel 11 failed") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestBatch_Empty(t *testing.T) {
	var b Batch
	cancellations, err := b.Wait()
	if err != nil || len(cancellations) != 0 {
		t.Errorf("Wait() = %v, %v", cancellations, err)
	}
}
