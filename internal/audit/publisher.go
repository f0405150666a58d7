package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink receives audit events beyond the primary store, e.g. a Kafka topic
// consumed by downstream reporting. Sink failures never fail the caller.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

func NewPublisher(store Store, sink Sink, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, sink: sink, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, base); err != nil {
		return err
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, base); err != nil {
			p.logger.Warn("audit sink publish failed",
				"action", base.Action, "error", err)
		}
	}
	return nil
}
