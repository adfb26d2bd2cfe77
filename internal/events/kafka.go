package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher queues envelopes and writes them from a single goroutine.
// Each event type goes to its own topic named TopicPrefix+EventType.
type KafkaPublisher struct {
	w           messageWriter
	topicPrefix string
	logger      zerolog.Logger

	mu      sync.RWMutex
	closed  bool
	inbox   chan kafka.Message
	closeCh chan struct{}
}

// KafkaConfig configures a KafkaPublisher.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	BufferSize  int
}

// NewKafkaPublisher creates a publisher writing to the given brokers and
// starts its delivery loop.
func NewKafkaPublisher(cfg KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return newKafkaPublisher(w, cfg.TopicPrefix, cfg.BufferSize, logger)
}

func newKafkaPublisher(w messageWriter, topicPrefix string, buf int, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		w:           w,
		topicPrefix: topicPrefix,
		logger:      logger.With().Str("publisher", "kafka").Logger(),
		inbox:       make(chan kafka.Message, buf),
		closeCh:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *KafkaPublisher) run() {
	defer close(p.closeCh)

	for m := range p.inbox {
		if err := p.w.WriteMessages(context.Background(), m); err != nil {
			p.logger.Error().Err(err).
				Str("topic", m.Topic).
				Str("key", string(m.Key)).
				Msg("failed to write event")
		}
	}
	if err := p.w.Close(); err != nil {
		p.logger.Error().Err(err).Msg("failed to close kafka writer")
	}
}

// Publish enqueues env for delivery. It fails fast with ErrBufferFull
// instead of blocking the caller.
func (p *KafkaPublisher) Publish(ctx context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topicPrefix + env.EventType,
		Key:   []byte(env.CorrelationID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events, flushes the queue and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.closeCh
	return nil
}
