package service

import (
	"context"

	"foodhub/internal/events"

	"github.com/rs/zerolog"
)

// notifier publishes domain events after a transaction has committed.
// Delivery failures are logged and never undo the committed work.
type notifier struct {
	pub      events.Publisher
	producer string
	logger   zerolog.Logger
}

func (n notifier) emit(ctx context.Context, eventType, correlationID string, payload any) {
	env, err := events.NewEnvelope(eventType, n.producer, correlationID, payload)
	if err != nil {
		n.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to build event")
		return
	}
	if err := n.pub.Publish(ctx, env); err != nil {
		n.logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("correlation_id", correlationID).
			Msg("failed to publish event")
	}
}
