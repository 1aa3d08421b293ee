// Package worker drains the event channel into the configured publisher.
package worker

import (
	"context"
	"log/slog"

	"verdict/internal/events"
)

// Worker consumes events from an inbox and delivers them. A delivery
// failure is logged and the worker keeps draining: notifications must never
// veto or stall the operations that produced them.
type Worker struct {
	publisher events.Publisher
	inbox     <-chan events.Event
	logger    *slog.Logger
}

func New(publisher events.Publisher, inbox <-chan events.Event, logger *slog.Logger) *Worker {
	return &Worker{publisher: publisher, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.publisher.Publish(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "event delivery failed",
					"kind", event.Kind,
					"case_id", event.CaseID,
					"error", err,
				)
			}
		}
	}
}
