package broker

import (
	"context"
	"sync"
	"time"

	"ci-reaper/src/logger"
)

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 100

type subscriber struct {
	ch   chan Message
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// InMemoryBroker fans every published message out to all current subscribers
// of the topic. Messages published before a subscription are not replayed.
// A subscriber whose buffer is full misses the message rather than stalling
// the publisher.
type InMemoryBroker struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber
	offsets     map[string]int64
	closed      bool
	done        chan struct{}
	logger      logger.Logger
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{
		subscribers: make(map[string][]*subscriber),
		offsets:     make(map[string]int64),
		done:        make(chan struct{}),
		logger:      logger.NewSilentLogger(),
	}
}

// SetLogger replaces the broker's logger.
func (b *InMemoryBroker) SetLogger(l logger.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = l
}

// Publish implements Broker.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Offset:    b.offsets[topic],
		Timestamp: time.Now().UnixMilli(),
	}
	b.offsets[topic]++

	for _, sub := range b.subscribers[topic] {
		select {
		case sub.ch <- msg:
		default:
			b.logger.Debug("[InMemoryBroker] subscriber on %s is full, dropped offset %d", topic, msg.Offset)
		}
	}
	b.logger.Debug("[InMemoryBroker] published to %s (key %s)", topic, key)
	return nil
}

// Subscribe implements Broker.
func (b *InMemoryBroker) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &subscriber{ch: make(chan Message, subscriberBuffer)}
	b.subscribers[topic] = append(b.subscribers[topic], sub)

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(topic, sub)
		case <-b.done:
		}
	}()

	return sub.ch, nil
}

func (b *InMemoryBroker) unsubscribe(topic string, target *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, sub := range subs {
		if sub == target {
			b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	target.close()
}

// Close closes every subscriber channel. Further calls are no-ops.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)

	for _, subs := range b.subscribers {
		for _, sub := range subs {
			sub.close()
		}
	}
	b.subscribers = make(map[string][]*subscriber)
	return nil
}
