// Package event provides the in-process pub/sub bus connecting the
// SubnetScope modules. Dispatch is synchronous unless PublishAsync is used;
// handler panics are recovered so one bad subscriber cannot take down a
// publisher.
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event is one message published on the bus.
type Event struct {
	Topic     string
	Source    string
	Timestamp time.Time
	Payload   any
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event)

// Bus is a thread-safe in-memory publish/subscribe bus.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
	all    map[int]Handler
	logger *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[string]map[int]Handler),
		all:    make(map[int]Handler),
		logger: logger,
	}
}

// Subscribe registers a handler for one topic and returns an unsubscribe
// function.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// SubscribeAll registers a handler for every topic and returns an
// unsubscribe function.
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.all[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
	}
}

// Publish delivers the event synchronously to all matching handlers.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if event.Topic == "" {
		return fmt.Errorf("event topic must not be empty")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	for _, h := range b.handlersFor(event.Topic) {
		b.dispatch(ctx, h, event)
	}
	return nil
}

// PublishAsync delivers the event on a separate goroutine.
func (b *Bus) PublishAsync(ctx context.Context, event Event) {
	go func() {
		if err := b.Publish(ctx, event); err != nil {
			b.logger.Warn("async publish failed", zap.String("topic", event.Topic), zap.Error(err))
		}
	}()
}

// handlersFor snapshots the handler list so Publish does not hold the lock
// while handlers run.
func (b *Bus) handlersFor(topic string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	handlers := make([]Handler, 0, len(b.subs[topic])+len(b.all))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	for _, h := range b.all {
		handlers = append(handlers, h)
	}
	return handlers
}

func (b *Bus) dispatch(ctx context.Context, h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", event.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, event)
}
