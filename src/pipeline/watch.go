package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"ci-reaper/src/broker"
	"ci-reaper/src/contracts"
)

// Event is one decoded message from either reaper topic.
// Exactly one of Cycle and Cancellation is set.
type Event struct {
	Topic        string
	Cycle        *contracts.CycleReport
	Cancellation *contracts.Cancellation
}

// Watch subscribes to both reaper topics and calls fn for each event until
// ctx is done or the broker closes. Undecodable messages are logged and skipped.
func (p *Pipeline) Watch(ctx context.Context, groupID string, fn func(Event)) error {
	cycles, err := p.broker.Subscribe(ctx, contracts.TopicCycles, groupID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicCycles, err)
	}
	cancellations, err := p.broker.Subscribe(ctx, contracts.TopicCancellations, groupID)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", contracts.TopicCancellations, err)
	}

	for cycles != nil || cancellations != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-cycles:
			if !ok {
				cycles = nil
				continue
			}
			p.dispatch(msg, fn)
		case msg, ok := <-cancellations:
			if !ok {
				cancellations = nil
				continue
			}
			p.dispatch(msg, fn)
		}
	}
	return ctx.Err()
}

func (p *Pipeline) dispatch(msg broker.Message, fn func(Event)) {
	event, err := decodeEvent(msg)
	if err != nil {
		p.logger.Error("[Pipeline] skipping %s offset %d: %v", msg.Topic, msg.Offset, err)
		return
	}
	fn(event)
}

func decodeEvent(msg broker.Message) (Event, error) {
	event := Event{Topic: msg.Topic}
	switch msg.Topic {
	case contracts.TopicCycles:
		var report contracts.CycleReport
		if err := json.Unmarshal(msg.Value, &report); err != nil {
			return event, fmt.Errorf("failed to unmarshal cycle report: %w", err)
		}
		event.Cycle = &report
	case contracts.TopicCancellations:
		var c contracts.Cancellation
		if err := json.Unmarshal(msg.Value, &c); err != nil {
			return event, fmt.Errorf("failed to unmarshal cancellation: %w", err)
		}
		event.Cancellation = &c
	default:
		return event, fmt.Errorf("unexpected topic %q", msg.Topic)
	}
	return event, nil
}
