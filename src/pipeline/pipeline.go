// Package pipeline wires the broker and the history store behind the
// scheduler. It runs in-process by default and against Redpanda and Postgres
// when they are configured.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ci-reaper/src/broker"
	"ci-reaper/src/config"
	"ci-reaper/src/contracts"
	"ci-reaper/src/logger"
	"ci-reaper/src/store"
)

// Mode selects where reports go.
type Mode int

const (
	// LocalMode keeps reports in process: in-memory broker and store.
	LocalMode Mode = iota
	// DistributedMode publishes to Redpanda and, with a DSN, archives to Postgres.
	DistributedMode
)

func (m Mode) String() string {
	if m == DistributedMode {
		return "distributed"
	}
	return "local"
}

// DetectMode picks DistributedMode when any Redpanda broker is configured.
func DetectMode(cfg *config.Config) Mode {
	if len(cfg.RedpandaBrokers) > 0 {
		return DistributedMode
	}
	return LocalMode
}

// Pipeline publishes and archives cycle reports.
type Pipeline struct {
	mode   Mode
	broker broker.Broker
	store  store.Store
	logger logger.Logger
}

// New assembles a pipeline from an existing broker and store.
func New(mode Mode, b broker.Broker, s store.Store, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Pipeline{mode: mode, broker: b, store: s, logger: log}
}

// Open connects the broker and store selected by cfg. The Postgres store is
// used whenever a DSN is set, independent of the broker mode.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Pipeline, error) {
	mode := DetectMode(cfg)

	var b broker.Broker
	if mode == DistributedMode {
		rp, err := broker.NewRedpandaBroker(cfg.RedpandaBrokers, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redpanda broker: %w", err)
		}
		if err := rp.Ping(ctx); err != nil {
			rp.Close()
			return nil, err
		}
		b = rp
	} else {
		mem := broker.NewInMemoryBroker()
		mem.SetLogger(log)
		b = mem
	}

	var s store.Store
	if cfg.PostgresDSN != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to create Postgres store: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			b.Close()
			return nil, err
		}
		s = pg
	} else {
		s = store.NewMemoryStore(store.DefaultHistory)
	}

	return New(mode, b, s, log), nil
}

// Mode reports how the pipeline was assembled.
func (p *Pipeline) Mode() Mode {
	return p.mode
}

// Store exposes the history store for read-only queries.
func (p *Pipeline) Store() store.Store {
	return p.store
}

// Report publishes the cycle to TopicCycles, each cancellation to
// TopicCancellations, and saves it to the store. Every step is attempted;
// failures are joined.
func (p *Pipeline) Report(ctx context.Context, report *contracts.CycleReport) error {
	var errs []error

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := p.broker.Publish(ctx, contracts.TopicCycles, report.CycleID, data); err != nil {
		errs = append(errs, fmt.Errorf("failed to publish %s: %w", report.CycleID, err))
	}

	for _, c := range report.Cancellations() {
		data, err := json.Marshal(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to marshal cancellation: %w", err))
			continue
		}
		key := c.Provider + "/" + c.Repository
		if err := p.broker.Publish(ctx, contracts.TopicCancellations, key, data); err != nil {
			errs = append(errs, fmt.Errorf("failed to publish cancellation of %s #%s: %w", c.Repository, c.BuildNumber, err))
		}
	}

	if err := p.store.SaveCycle(ctx, report); err != nil {
		errs = append(errs, err)
	}

	p.logger.Debug("[Pipeline] recorded %s (%d cancellations)", report.CycleID, len(report.Cancellations()))
	return errors.Join(errs...)
}

// Close shuts down the broker and the store.
func (p *Pipeline) Close() error {
	return errors.Join(p.broker.Close(), p.store.Close())
}
