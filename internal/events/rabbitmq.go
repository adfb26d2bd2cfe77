package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQConfig configures a RabbitMQPublisher.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	Retries  int
}

// RabbitMQPublisher publishes envelopes to a topic exchange, routed by event type.
type RabbitMQPublisher struct {
	exchange string
	logger   zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   amqpChannel
}

// NewRabbitMQPublisher dials the broker, retrying with growing backoff, and
// declares the exchange.
func NewRabbitMQPublisher(ctx context.Context, cfg RabbitMQConfig, logger zerolog.Logger) (*RabbitMQPublisher, error) {
	logger = logger.With().Str("publisher", "rabbitmq").Logger()

	if cfg.Exchange == "" {
		return nil, fmt.Errorf("exchange name cannot be empty")
	}
	retries := cfg.Retries
	if retries < 1 {
		retries = 5
	}

	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < retries; i++ {
		conn, err = amqp.Dial(cfg.URL)
		if err == nil {
			break
		}
		wait := time.Duration(i*i)*time.Second + time.Second
		logger.Warn().Err(err).Dur("retry_in", wait).Msg("failed to connect to rabbitmq")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", ctx.Err())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", retries, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	logger.Info().Str("exchange", cfg.Exchange).Msg("connected to rabbitmq")

	p := newRabbitMQPublisher(ch, cfg.Exchange, logger)
	p.conn = conn
	return p, nil
}

func newRabbitMQPublisher(ch amqpChannel, exchange string, logger zerolog.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		exchange: exchange,
		logger:   logger,
		ch:       ch,
	}
}

// Publish sends env synchronously. Channels are not safe for concurrent
// publishing, hence the mutex.
func (p *RabbitMQPublisher) Publish(ctx context.Context, env Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return ErrClosed
	}

	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,
		env.EventType,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     env.EventID,
			CorrelationId: env.CorrelationID,
			Type:          env.EventType,
			Timestamp:     env.OccurredAt,
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s to exchange %s: %w", env.EventType, p.exchange, err)
	}

	p.logger.Debug().Str("event_type", env.EventType).Str("event_id", env.EventID).Msg("event published")
	return nil
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		if err := p.ch.Close(); err != nil {
			return err
		}
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}
