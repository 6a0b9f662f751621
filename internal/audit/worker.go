package audit

import (
	"context"
	"log/slog"
)

// Sink is where the worker delivers events. Implemented by KafkaSink;
// swapped for a recorder fake in tests.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Worker drains the publisher inbox into the sink. Delivery failures are
// logged and skipped; audit loss is preferable to a stalled pipeline.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run processes events until the context is cancelled, then drains whatever
// is already buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	// The run context is already cancelled; drain with a fresh one.
	ctx := context.Background()
	for {
		select {
		case event := <-w.inbox:
			w.deliver(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil {
		w.logger.Error("failed to deliver audit event", "kind", event.Kind, "error", err)
	}
}
