// Package scheduler runs reaping cycles forever at a fixed interval.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"ci-reaper/src/contracts"
	"ci-reaper/src/logger"
)

// sinkTimeout bounds delivery of one report, independent of shutdown.
const sinkTimeout = 10 * time.Second

// Cycler runs one cycle. Implemented by reaper.Coordinator.
type Cycler interface {
	RunCycle(ctx context.Context) *contracts.CycleReport
}

// Sink receives every finished report. Implemented by pipeline.Pipeline.
type Sink interface {
	Report(ctx context.Context, report *contracts.CycleReport) error
}

// State is the loop's current activity.
type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Loop starts a cycle every interval, measured from the previous cycle's
// start. Cycles never overlap: a cycle that overruns the interval delays the
// next one, and the ticks it missed collapse into one.
type Loop struct {
	cycler   Cycler
	sink     Sink
	interval time.Duration
	logger   logger.Logger

	state  atomic.Int32
	cycles atomic.Int64
}

// New creates a Loop. sink may be nil.
func New(cycler Cycler, sink Sink, interval time.Duration, log logger.Logger) *Loop {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Loop{
		cycler:   cycler,
		sink:     sink,
		interval: interval,
		logger:   log,
	}
}

// State reports whether a cycle is in progress.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Cycles returns how many cycles have finished.
func (l *Loop) Cycles() int64 {
	return l.cycles.Load()
}

// Run starts the first cycle immediately and keeps going until ctx is
// cancelled. Cycle failures never stop the loop; the only return is ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("[Scheduler] starting, one cycle every %s", l.interval)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		l.RunOnce(ctx)

		select {
		case <-ctx.Done():
			l.logger.Info("[Scheduler] stopping after %d cycles", l.Cycles())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce runs a single cycle, logs its outcome and hands the report to the sink.
func (l *Loop) RunOnce(ctx context.Context) *contracts.CycleReport {
	l.state.Store(int32(Running))
	report := l.cycler.RunCycle(ctx)
	l.state.Store(int32(Idle))
	l.cycles.Add(1)

	l.logReport(report)

	if l.sink != nil {
		sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
		defer cancel()
		if err := l.sink.Report(sinkCtx, report); err != nil {
			l.logger.Error("[Scheduler] failed to record %s: %v", report.CycleID, err)
		}
	}
	return report
}

func (l *Loop) logReport(r *contracts.CycleReport) {
	cancelled := len(r.Cancellations())
	elapsed := r.Duration().Round(time.Millisecond)

	switch r.Outcome {
	case contracts.OutcomeTimedOut:
		l.logger.Error("[Scheduler] %s timed out after %s: %d checks finished, %d still pending, %d cancellations",
			r.CycleID, elapsed, len(r.Checks), r.Pending, cancelled)
	case contracts.OutcomeAborted:
		l.logger.Info("[Scheduler] %s aborted by shutdown after %s: %d checks finished, %d cancellations",
			r.CycleID, elapsed, len(r.Checks), cancelled)
	default:
		l.logger.Info("[Scheduler] %s completed in %s: %d checks, %d failed, %d cancellations",
			r.CycleID, elapsed, len(r.Checks), r.FailedChecks(), cancelled)
	}
}
