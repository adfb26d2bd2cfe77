package events

import (
	"context"
	"fmt"

	"foodhub/internal/config"

	"github.com/rs/zerolog"
)

// New builds the publisher selected by cfg.Driver.
func New(ctx context.Context, cfg config.EventsConfig, logger zerolog.Logger) (Publisher, error) {
	switch cfg.Driver {
	case config.EventsDriverNone, "":
		return NewNopPublisher(), nil
	case config.EventsDriverKafka:
		return NewKafkaPublisher(KafkaConfig{
			Brokers:     cfg.KafkaBrokers,
			TopicPrefix: cfg.TopicPrefix,
			BufferSize:  cfg.BufferSize,
		}, logger), nil
	case config.EventsDriverRabbitMQ:
		return NewRabbitMQPublisher(ctx, RabbitMQConfig{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.Exchange,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown events driver: %s", cfg.Driver)
	}
}
