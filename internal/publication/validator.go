// Package publication implements publication readiness checking and the
// publish handoff for courses.
//
// The validator is read-only and side-effect-free so it can run
// repeatedly, including concurrently with an in-flight generation; a
// format still being generated simply reports as missing. The publisher
// hands a validated course to the downstream publishing system and then
// runs three independent best-effort post-transfer hooks.
package publication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/observability"
	"github.com/educoreai-lotus/content-studio/internal/repository"
)

// Validation issue texts. The topic name plus one of these make up a
// ValidationIssue; format-level issues are prefixed with the format name.
const (
	issueNoTopics        = "course has no topics"
	issueNoTemplate      = "template not selected"
	issueTemplateMissing = "template not found"
	issueNoFormatOrder   = "template has no format order"
	issueNotGenerated    = "format not generated"
	issueEmpty           = "content empty/incomplete"
	issueMalformed       = "content malformed"
	issueAvatarFailed    = "avatar video generation marked as failed"
	issueExercises       = "devlab exercises missing or invalid"
)

// issueKind classifies an issue text for the validation metrics label.
func issueKind(issue string) string {
	switch {
	case issue == issueNoTopics:
		return "no_topics"
	case issue == issueNoTemplate:
		return "template_missing"
	case issue == issueTemplateMissing:
		return "template_not_found"
	case issue == issueNoFormatOrder:
		return "format_order_empty"
	case strings.HasSuffix(issue, issueNotGenerated):
		return "format_missing"
	case strings.HasSuffix(issue, issueEmpty):
		return "content_empty"
	case strings.HasSuffix(issue, issueMalformed):
		return "content_malformed"
	case strings.HasSuffix(issue, issueAvatarFailed):
		return "avatar_failed"
	case issue == issueExercises:
		return "exercises_invalid"
	default:
		return "other"
	}
}

// Validator checks whether every topic of a course satisfies its
// template's format requirements. It performs no writes.
type Validator struct {
	topics    repository.TopicRepository
	templates repository.TemplateRepository
	contents  repository.ContentRepository
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// NewValidator creates a publication validator.
func NewValidator(topics repository.TopicRepository, templates repository.TemplateRepository, contents repository.ContentRepository, logger zerolog.Logger, metrics *observability.Metrics) *Validator {
	return &Validator{
		topics:    topics,
		templates: templates,
		contents:  contents,
		logger:    logger.With().Str("component", "publication_validator").Logger(),
		metrics:   metrics,
	}
}

// Validate checks every topic of the course and accumulates all findings;
// it never stops at the first failing topic. The returned error covers
// repository failures only, never validation findings.
func (v *Validator) Validate(ctx context.Context, courseID uuid.UUID) (*domain.ValidationResult, error) {
	topics, err := v.topics.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing course topics: %w", err)
	}

	var issues []domain.ValidationIssue
	if len(topics) == 0 {
		issues = append(issues, domain.ValidationIssue{Topic: courseID.String(), Issue: issueNoTopics})
	}

	for _, topic := range topics {
		topicIssues, err := v.validateTopic(ctx, topic)
		if err != nil {
			return nil, err
		}
		issues = append(issues, topicIssues...)
	}

	result := &domain.ValidationResult{
		Valid:  len(issues) == 0,
		Errors: issues,
	}

	if v.metrics != nil {
		kinds := make([]string, 0, len(issues))
		for _, issue := range issues {
			kinds = append(kinds, issueKind(issue.Issue))
		}
		v.metrics.RecordValidationRun(kinds)
	}
	v.logger.Info().
		Str("course_id", courseID.String()).
		Int("topics", len(topics)).
		Int("issues", len(issues)).
		Bool("valid", result.Valid).
		Msg("Validation run completed")
	return result, nil
}

// validateTopic runs the per-topic check sequence. Template-level failures
// skip the remaining checks for the topic; format and exercise findings
// accumulate.
func (v *Validator) validateTopic(ctx context.Context, topic *domain.Topic) ([]domain.ValidationIssue, error) {
	var issues []domain.ValidationIssue
	addIssue := func(text string) {
		issues = append(issues, domain.ValidationIssue{Topic: topic.Name, Issue: text})
	}

	if topic.TemplateID == nil {
		addIssue(issueNoTemplate)
		return issues, nil
	}

	template, err := v.templates.Get(ctx, *topic.TemplateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			addIssue(issueTemplateMissing)
			return issues, nil
		}
		return nil, fmt.Errorf("loading template %s: %w", topic.TemplateID, err)
	}

	if len(template.FormatOrder) == 0 {
		addIssue(issueNoFormatOrder)
		return issues, nil
	}

	rows, err := v.contents.ListCurrent(ctx, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("listing content for topic %s: %w", topic.ID, err)
	}
	byType := make(map[domain.ContentFormat]*domain.Content, len(rows))
	for _, row := range rows {
		if row.DeletedAt == nil {
			byType[row.ContentType] = row
		}
	}

	for _, format := range template.FormatOrder {
		row := resolveRow(byType, format)
		if row == nil {
			addIssue(fmt.Sprintf("%s: %s", format, issueNotGenerated))
			continue
		}
		issues = append(issues, checkContent(topic.Name, format, row)...)
	}

	if !domain.DecodeDevLabExercises(topic.DevLabExercises).IsValid() {
		addIssue(issueExercises)
	}
	return issues, nil
}

// resolveRow finds the stored row satisfying a required format, following
// the legacy alias where text and audio may both map to a text_audio row.
func resolveRow(byType map[domain.ContentFormat]*domain.Content, format domain.ContentFormat) *domain.Content {
	for _, alias := range format.RowAliases() {
		if row, ok := byType[alias]; ok {
			return row
		}
	}
	return nil
}

// checkContent runs the per-format emptiness predicate on a stored row.
// A payload that cannot be parsed is malformed, which is a distinct
// finding from being empty.
func checkContent(topicName string, format domain.ContentFormat, row *domain.Content) []domain.ValidationIssue {
	addIssue := func(text string) []domain.ValidationIssue {
		return []domain.ValidationIssue{{Topic: topicName, Issue: fmt.Sprintf("%s: %s", format, text)}}
	}

	data, ok := parsePayload(row.Data)
	if !ok {
		return addIssue(issueMalformed)
	}

	if format == domain.FormatAvatarVideo {
		// An avatar video payload carrying an embedded failure marker is a
		// distinct finding even when the payload is otherwise non-empty.
		if nonBlank(payloadString(data, "error")) {
			return addIssue(issueAvatarFailed)
		}
	}

	if !formatHasContent(format, data) {
		return addIssue(issueEmpty)
	}
	return nil
}

// formatHasContent is the per-format emptiness predicate.
func formatHasContent(format domain.ContentFormat, data map[string]any) bool {
	switch format {
	case domain.FormatText, domain.FormatAudio:
		// Both aliases resolve to the text_audio row; narration text is
		// what makes it publishable, the audio file may lag behind.
		return nonBlank(payloadString(data, "text", "content"))
	case domain.FormatCode:
		return nonBlank(payloadString(data, "code", "content"))
	case domain.FormatPresentation:
		return nonBlank(payloadString(data, "presentationUrl", "fileUrl", "url"))
	case domain.FormatMindMap:
		nodes, ok := data["nodes"].([]any)
		return ok && len(nodes) > 0
	case domain.FormatAvatarVideo:
		return nonBlank(payloadString(data, "videoUrl"))
	default:
		return len(data) > 0
	}
}

// parsePayload decodes a stored content payload. ok is false when the
// payload is not a JSON object.
func parsePayload(raw json.RawMessage) (map[string]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return nil, false
	}
	return data, true
}

// payloadString returns the first non-blank string value among the named
// payload fields.
func payloadString(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := data[key].(string); ok && nonBlank(s) {
			return s
		}
	}
	return ""
}

func nonBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
