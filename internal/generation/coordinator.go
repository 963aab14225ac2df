// Package generation runs the six-format content fan-out for one topic.
//
// A generation run launches one goroutine per format, each with its own
// hard deadline, and settles all of them: a failed format never
// short-circuits its siblings, and the aggregate always reports all six
// fixed keys regardless of completion order. Format outcomes are reported
// through a progress sink while the run is in flight.
package generation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/ai"
	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/metadata"
	"github.com/educoreai-lotus/content-studio/internal/observability"
	"github.com/educoreai-lotus/content-studio/internal/transcript"
)

// defaultFormatTimeout is the hard per-format deadline when none is
// configured.
const defaultFormatTimeout = 5 * time.Minute

// Task progress statuses reported through the progress sink.
const (
	StatusStarting  = "starting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ProgressSink receives per-format task progress. message carries the
// human-readable format label for starting/completed events and the
// failure reason for failed events. Sinks must be safe for concurrent
// calls; the six tasks report independently.
type ProgressSink func(format domain.ContentFormat, status, message string)

// Persister is the persistence surface the coordinator needs.
type Persister interface {
	Persist(ctx context.Context, generated *domain.GeneratedContent) (*domain.Content, error)
}

// MetadataResolver resolves lesson metadata for the generation request.
type MetadataResolver interface {
	Resolve(ctx context.Context, topicID uuid.UUID, transcript string) (*metadata.Metadata, error)
}

// TranscriptInfo describes the normalized transcript in the aggregate.
type TranscriptInfo struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Length   int    `json:"length"`
}

// MetadataInfo describes the resolved lesson metadata in the aggregate.
type MetadataInfo struct {
	LessonTopic string   `json:"lessonTopic"`
	Language    string   `json:"language"`
	Skills      []string `json:"skillsList"`
}

// FormatResult is the per-format outcome slot in the aggregate. Every run
// produces exactly six of these, one per fixed key.
type FormatResult struct {
	// Generated reports whether the format settled successfully; Status
	// carries the matching progress label for human-facing consumers.
	Generated bool   `json:"generated"`
	Status    string `json:"status"`

	// ContentID references the persisted row for completed formats and
	// for avatar videos persisted with a failure payload.
	ContentID *uuid.UUID `json:"content_id,omitempty"`

	// Reason carries the failure reason for failed formats.
	Reason string `json:"reason,omitempty"`

	// ElapsedMS is the wall time the task took, in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`
}

// AvatarVideoStatus is the dedicated retry block emitted when the avatar
// video format failed but the rest of the run may stand.
type AvatarVideoStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Aggregate is the fixed-shape result of one generation run.
type Aggregate struct {
	TopicID    uuid.UUID      `json:"topic_id"`
	Transcript TranscriptInfo `json:"transcript"`
	Metadata   MetadataInfo   `json:"metadata"`

	// ContentFormats always contains the six fixed aggregate keys.
	ContentFormats map[string]FormatResult `json:"content_formats"`

	// ContinueGeneration signals that a caller can offer a retry of just
	// the avatar video format.
	ContinueGeneration bool `json:"continue_generation,omitempty"`

	// AvatarVideo summarizes the avatar failure when ContinueGeneration
	// is set.
	AvatarVideo *AvatarVideoStatus `json:"avatar_video,omitempty"`
}

// formatOutcome is the internal per-task settle record.
type formatOutcome struct {
	format   domain.ContentFormat
	result   FormatResult
	avatar   *AvatarVideoStatus
}

// Coordinator runs the six-format generation fan-out.
type Coordinator struct {
	generator ai.ContentGenerator
	persister Persister
	resolver  MetadataResolver
	logger    zerolog.Logger
	metrics   *observability.Metrics

	formatTimeout time.Duration
}

// NewCoordinator creates a generation coordinator. formatTimeout bounds
// each per-format task; zero means the five minute default.
func NewCoordinator(generator ai.ContentGenerator, persister Persister, resolver MetadataResolver, formatTimeout time.Duration, logger zerolog.Logger, metrics *observability.Metrics) *Coordinator {
	if formatTimeout <= 0 {
		formatTimeout = defaultFormatTimeout
	}
	return &Coordinator{
		generator:     generator,
		persister:     persister,
		resolver:      resolver,
		logger:        logger.With().Str("component", "generation_coordinator").Logger(),
		metrics:       metrics,
		formatTimeout: formatTimeout,
	}
}

// GenerateAll runs the full six-format fan-out for one topic and returns
// the settled aggregate. The only fatal errors are the missing-topic-ID
// precondition and a metadata resolution failure; per-format failures are
// isolated and reported inside the aggregate.
func (c *Coordinator) GenerateAll(ctx context.Context, topicID uuid.UUID, rawTranscript string, sink ProgressSink) (*Aggregate, error) {
	if topicID == uuid.Nil {
		return nil, domain.ErrMissingTopicID
	}
	if sink == nil {
		sink = func(domain.ContentFormat, string, string) {}
	}

	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordGenerationRunStarted()
	}

	normalized := transcript.Normalize(rawTranscript)

	meta, err := c.resolver.Resolve(ctx, topicID, normalized)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordGenerationRunFailed(time.Since(start).Seconds())
		}
		return nil, fmt.Errorf("resolving topic metadata: %w", err)
	}

	logger := observability.WithTopicContext(c.logger, topicID.String(), "")
	logger.Info().
		Str("language", meta.Language).
		Int("transcript_length", len(normalized)).
		Msg("Starting generation run")

	formats := domain.AllFormats()
	outcomeChan := make(chan formatOutcome, len(formats))
	var wg sync.WaitGroup

	for _, format := range formats {
		wg.Add(1)
		go func(f domain.ContentFormat) {
			defer wg.Done()
			outcomeChan <- c.runFormatTask(ctx, f, topicID, normalized, meta, sink, logger)
		}(format)
	}

	go func() {
		wg.Wait()
		close(outcomeChan)
	}()

	aggregate := &Aggregate{
		TopicID: topicID,
		Transcript: TranscriptInfo{
			Text:     normalized,
			Language: meta.Language,
			Length:   len([]rune(normalized)),
		},
		Metadata: MetadataInfo{
			LessonTopic: meta.Title,
			Language:    meta.Language,
			Skills:      meta.Skills,
		},
		ContentFormats: make(map[string]FormatResult, len(formats)),
	}

	for outcome := range outcomeChan {
		aggregate.ContentFormats[outcome.format.ResultKey()] = outcome.result
		if outcome.avatar != nil {
			aggregate.ContinueGeneration = true
			aggregate.AvatarVideo = outcome.avatar
		}
	}

	if c.metrics != nil {
		c.metrics.RecordGenerationRunCompleted(time.Since(start).Seconds())
	}
	logger.Info().
		Bool("continue_generation", aggregate.ContinueGeneration).
		Dur("elapsed", time.Since(start)).
		Msg("Generation run settled")
	return aggregate, nil
}

// runFormatTask executes one format task under its own hard deadline and
// returns its settle record. Every exit path reports progress.
func (c *Coordinator) runFormatTask(ctx context.Context, format domain.ContentFormat, topicID uuid.UUID, transcriptText string, meta *metadata.Metadata, sink ProgressSink, logger zerolog.Logger) formatOutcome {
	taskStart := time.Now()
	taskCtx, cancel := context.WithTimeout(ctx, c.formatTimeout)
	defer cancel()

	label := format.Label()
	sink(format, StatusStarting, label)
	if c.metrics != nil {
		c.metrics.RecordFormatTaskStarted(string(format))
	}
	taskLogger := observability.WithFormatContext(logger, topicID.String(), string(format))

	generated, err := c.generator.Generate(taskCtx, ai.GenerationRequest{
		TopicID:           topicID,
		LessonTopic:       meta.Title,
		LessonDescription: meta.Description,
		Language:          meta.Language,
		Skills:            meta.Skills,
		ContentTypeID:     format.TypeID(),
		TranscriptText:    transcriptText,
	})
	if err != nil {
		reason := failureReason(err)
		taskLogger.Warn().Err(err).Dur("elapsed", time.Since(taskStart)).Msg("Format generation failed")
		return c.settleFailed(format, reason, taskStart, sink)
	}

	saved, err := c.persister.Persist(taskCtx, generated)
	if err != nil {
		taskLogger.Error().Err(err).Msg("Content persistence failed")
		return c.settleFailed(format, fmt.Sprintf("persistence failed: %v", err), taskStart, sink)
	}

	// A persisted avatar video can still be a failed generation: the
	// payload must carry a usable video reference and no embedded error.
	if format == domain.FormatAvatarVideo {
		if reason := avatarFailureReason(generated); reason != "" {
			taskLogger.Warn().Str("reason", reason).Msg("Avatar video persisted with failure payload")
			outcome := c.settleFailed(format, reason, taskStart, sink)
			outcome.result.ContentID = &saved.ID
			outcome.avatar = &AvatarVideoStatus{Status: StatusFailed, Reason: reason}
			return outcome
		}
	}

	elapsed := time.Since(taskStart)
	if c.metrics != nil {
		c.metrics.RecordFormatTaskCompleted(string(format), elapsed.Seconds())
	}
	sink(format, StatusCompleted, label)
	taskLogger.Info().Dur("elapsed", elapsed).Msg("Format generation completed")

	return formatOutcome{
		format: format,
		result: FormatResult{
			Generated: true,
			Status:    StatusCompleted,
			ContentID: &saved.ID,
			ElapsedMS: elapsed.Milliseconds(),
		},
	}
}

// settleFailed builds the failed settle record and reports progress.
func (c *Coordinator) settleFailed(format domain.ContentFormat, reason string, taskStart time.Time, sink ProgressSink) formatOutcome {
	elapsed := time.Since(taskStart)
	if c.metrics != nil {
		c.metrics.RecordFormatTaskFailed(string(format), failureType(reason), elapsed.Seconds())
	}
	sink(format, StatusFailed, reason)
	return formatOutcome{
		format: format,
		result: FormatResult{
			Status:    StatusFailed,
			Reason:    reason,
			ElapsedMS: elapsed.Milliseconds(),
		},
	}
}

// avatarFailureReason returns the embedded failure reason for an avatar
// video payload, or empty when the payload is usable.
func avatarFailureReason(generated *domain.GeneratedContent) string {
	if embedded := generated.EmbeddedError(); embedded != "" {
		return embedded
	}
	if generated.VideoURL() == "" {
		return "no usable video reference in payload"
	}
	return ""
}

// failureReason renders a task error as a human-readable reason. Timeouts
// are reported like any other generation failure.
func failureReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "generation timed out"
	}
	return err.Error()
}

// failureType classifies a failure reason for metrics labels.
func failureType(reason string) string {
	switch {
	case reason == "generation timed out":
		return "timeout"
	case reason == "no usable video reference in payload":
		return "embedded_failure"
	default:
		return "error"
	}
}
