// Package events delivers committed ledger events to read-side consumers.
package events

import (
	"context"
	"log/slog"

	"github.com/mmynk/billsplitter/internal/models"
)

// Publisher receives events after the operation that emitted them has
// committed. Publishers never fail the operation: delivery errors are logged.
type Publisher interface {
	Publish(ctx context.Context, events []models.Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, []models.Event) {}

// Fanout publishes to each publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, events []models.Event) {
	for _, p := range f {
		p.Publish(ctx, events)
	}
}

// LogPublisher writes one log line per event.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger uses slog.Default().
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, events []models.Event) {
	for _, e := range events {
		attrs := []any{
			"seq", e.Seq,
			"ledger", e.Ledger,
			"kind", e.Kind,
		}
		if !e.BillID.IsZero() {
			attrs = append(attrs, "bill_id", e.BillID)
		}
		if !e.Account.IsZero() {
			attrs = append(attrs, "account", e.Account)
		}
		if e.Amount != "" {
			attrs = append(attrs, "amount", e.Amount)
		}
		p.logger.InfoContext(ctx, "Ledger event", attrs...)
	}
}
