// Package ai provides clients for the AI collaborators used by the content
// pipeline: the generation service that renders a topic transcript into one
// of the six content formats, and the LLM-based metadata extractor used
// when a topic has no stored title or description.
//
// Both clients are HTTP-based, rate limited, and retry transient failures
// (429, 5xx, network errors). The creative step itself is opaque to this
// service; these clients only speak the boundary contract.
//
// Example usage:
//
//	generator := ai.NewGenerationClient(cfg.AI.Generation, logger, metrics)
//	content, err := generator.Generate(ctx, ai.GenerationRequest{
//		TopicID:        topicID,
//		LessonTopic:    "Goroutines and Channels",
//		Language:       "en",
//		ContentTypeID:  domain.FormatText.TypeID(),
//		TranscriptText: transcript,
//	})
package ai

import (
	"context"

	"github.com/google/uuid"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// GenerationRequest contains the per-format input for the generation
// collaborator. Field names on the wire follow the collaborator's contract.
type GenerationRequest struct {
	// TopicID identifies the topic being generated.
	TopicID uuid.UUID `json:"topic_id"`

	// LessonTopic is the resolved topic title.
	LessonTopic string `json:"lessonTopic"`

	// LessonDescription is the resolved topic description.
	LessonDescription string `json:"lessonDescription"`

	// Language is the ISO 639-1 language code of the transcript.
	Language string `json:"language"`

	// Skills is the ordered skill tag list attached to the topic.
	Skills []string `json:"skillsList"`

	// ContentTypeID is the numeric format identifier (1-6).
	ContentTypeID int `json:"content_type_id"`

	// TranscriptText is the normalized transcript to generate from.
	TranscriptText string `json:"transcriptText"`
}

// ContentGenerator defines the interface for the per-format generation
// collaborator.
//
// Implementations must respect context cancellation and deadlines; the
// pipeline imposes a hard per-format timeout through the context.
type ContentGenerator interface {
	// Generate renders the transcript into the format named by
	// req.ContentTypeID. The returned payload is raw collaborator output;
	// format-specific failure re-checks (avatar video) happen downstream.
	Generate(ctx context.Context, req GenerationRequest) (*domain.GeneratedContent, error)
}

// ExtractionRequest contains parameters for metadata extraction.
type ExtractionRequest struct {
	// Transcript is the normalized transcript text to derive metadata from.
	Transcript string

	// Language is the detected transcript language, used to instruct the
	// model to answer in the same language.
	Language string
}

// ExtractedMetadata contains the LLM-derived topic metadata.
type ExtractedMetadata struct {
	// Title is the derived lesson title.
	Title string

	// Description is the derived lesson description.
	Description string

	// Concepts are the key concepts found in the transcript.
	Concepts []string

	// Model is the LLM model used.
	Model string
}

// MetadataExtractor defines the interface for LLM-based topic metadata
// extraction. Callers must treat failure as degradable: the resolver falls
// back to a deterministic extraction and logs a warning.
type MetadataExtractor interface {
	// ExtractMetadata derives a title, description, and key concepts from
	// the transcript.
	ExtractMetadata(ctx context.Context, req ExtractionRequest) (*ExtractedMetadata, error)

	// Model returns the model identifier being used.
	Model() string
}
