package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants for lifecycle events.
const (
	EventTypeGenerationStarted   = "topic.generation.started"
	EventTypeGenerationCompleted = "topic.generation.completed"
	EventTypeGenerationFailed    = "topic.generation.failed"
	EventTypeFormatCompleted     = "topic.format.completed"
	EventTypeFormatFailed        = "topic.format.failed"
	EventTypePublishSucceeded    = "course.publish.succeeded"
	EventTypePublishFailed       = "course.publish.failed"
	EventTypeCourseArchived      = "course.archived"
)

// Aggregate type constants for lifecycle events.
const (
	AggregateTypeTopic  = "topic"
	AggregateTypeCourse = "course"
)

// LifecycleEvent represents a content-lifecycle event published to the
// event bus.
type LifecycleEvent struct {
	EventID       string
	EventVersion  int
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// NewLifecycleEvent creates a new lifecycle event with the given
// parameters. The payload is JSON-serialized automatically.
func NewLifecycleEvent(eventType, aggregateID, aggregateType string, payload interface{}) (*LifecycleEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &LifecycleEvent{
		EventID:       uuid.New().String(),
		EventVersion:  1,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payloadBytes,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// GenerationCompletedPayload is the payload of a generation lifecycle event.
type GenerationCompletedPayload struct {
	TopicID            string   `json:"topic_id"`
	Language           string   `json:"language"`
	GeneratedFormats   []string `json:"generated_formats"`
	FailedFormats      []string `json:"failed_formats"`
	ContinueGeneration bool     `json:"continue_generation,omitempty"`
}

// PublishPayload is the payload of a publish lifecycle event.
type PublishPayload struct {
	CourseID   string `json:"course_id"`
	TopicCount int    `json:"topic_count"`
	Error      string `json:"error,omitempty"`
}
