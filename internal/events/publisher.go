// Package events publishes content lifecycle events to Kafka so downstream
// services (notifications, analytics) can react to generation and publish
// outcomes. Publishing is best effort: a broker failure is logged and never
// surfaced to the operation that raised the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/educoreai-lotus/content-studio/internal/config"
)

// Lifecycle event types.
const (
	TopicGenerationStarted   = "topic.generation.started"
	TopicGenerationCompleted = "topic.generation.completed"
	TopicGenerationFailed    = "topic.generation.failed"
	CoursePublishSucceeded   = "course.publish.succeeded"
	CoursePublishFailed      = "course.publish.failed"
)

// Event is one lifecycle event envelope. Key carries the topic or course
// ID so events for one entity land on the same partition.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	TopicID    string         `json:"topic_id,omitempty"`
	CourseID   string         `json:"course_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Publisher emits lifecycle events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

// KafkaPublisher writes lifecycle events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// Compile-time interface check.
var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a Kafka-backed lifecycle event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

// Publish sends one lifecycle event. Failures are logged and swallowed;
// a broker outage must never fail the operation that raised the event.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", event.Type).Msg("Failed to encode lifecycle event")
		return
	}

	key := event.TopicID
	if key == "" {
		key = event.CourseID
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", event.Type).
			Str("key", key).
			Msg("Failed to publish lifecycle event")
		return
	}

	p.logger.Debug().
		Str("event_type", event.Type).
		Str("key", key).
		Msg("Lifecycle event published")
}

// Close flushes pending batches and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info().Msg("Closing event publisher")
	return p.writer.Close()
}

// NopPublisher discards every event. Used when Kafka is disabled.
type NopPublisher struct{}

// Compile-time interface check.
var _ Publisher = (*NopPublisher)(nil)

// Publish discards the event.
func (NopPublisher) Publish(context.Context, Event) {}

// Close is a no-op.
func (NopPublisher) Close() error { return nil }
