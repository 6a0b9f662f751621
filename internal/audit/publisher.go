// Package audit captures structured events for key domain actions and streams
// them to Kafka through a buffered background worker, so request handling
// never blocks on the broker.
package audit

import (
	"context"
	"log/slog"
	"sync"

	"talenthunt/pkg/requestcontext"
)

// Recorder is the narrow interface services publish through.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// Publisher buffers events for the worker. Record never blocks: when the
// buffer is full the event is dropped and logged, because audit must not
// back-pressure user requests.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

func (p *Publisher) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, event dropped", "kind", event.Kind)
	}
}

// Inbox exposes the event channel to the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Nop discards all events. Used when no brokers are configured.
type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// Capture collects events in memory for test assertions.
type Capture struct {
	mu     sync.Mutex
	events []Event
}

func (c *Capture) Record(_ context.Context, event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *Capture) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Kinds returns the recorded event kinds in order.
func (c *Capture) Kinds() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make([]string, len(c.events))
	for i, e := range c.events {
		kinds[i] = e.Kind
	}
	return kinds
}
