// Package domain provides domain models and business logic for the
// Content Studio service.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SystemAuthorID is the fixed synthetic author identity used when a topic
// is created by the generation pipeline without an authenticated trainer.
const SystemAuthorID = "system-generator"

// TopicStatus represents the lifecycle states of a topic.
// These values must match the database enum topic_status.
// Rows are never physically removed; deletion is a status plus a
// deleted_at stamp.
type TopicStatus string

const (
	TopicStatusActive   TopicStatus = "active"
	TopicStatusArchived TopicStatus = "archived"
	TopicStatusDeleted  TopicStatus = "deleted"
)

// IsValid reports whether the status is one of the known enum values.
func (s TopicStatus) IsValid() bool {
	switch s {
	case TopicStatusActive, TopicStatusArchived, TopicStatusDeleted:
		return true
	}
	return false
}

// CourseStatus represents the lifecycle states of a course.
// These values must match the database enum course_status.
// This service never marks a course as publicly visible; after a
// successful publish handoff the course becomes archived, and the
// downstream publishing system owns visibility.
type CourseStatus string

const (
	CourseStatusDraft    CourseStatus = "draft"
	CourseStatusActive   CourseStatus = "active"
	CourseStatusArchived CourseStatus = "archived"
)

// IsValid reports whether the status is one of the known enum values.
func (s CourseStatus) IsValid() bool {
	switch s {
	case CourseStatusDraft, CourseStatusActive, CourseStatusArchived:
		return true
	}
	return false
}

// QualityCheckStatus represents the review state of a generated content row.
// These values must match the database enum quality_check_status.
type QualityCheckStatus string

const (
	QualityCheckPending       QualityCheckStatus = "pending"
	QualityCheckApproved      QualityCheckStatus = "approved"
	QualityCheckRejected      QualityCheckStatus = "rejected"
	QualityCheckNeedsRevision QualityCheckStatus = "needs_revision"
)

// Topic is the atomic unit of learning content, optionally grouped into a
// course.
type Topic struct {
	ID          uuid.UUID
	Name        string
	Description string

	// Language is the ISO 639-1 language code of the topic content.
	Language string

	// Skills is the ordered set of skill tags attached to the topic.
	Skills []string

	// CourseID is nil for standalone topics.
	CourseID *uuid.UUID

	// TemplateID selects the template that defines which formats are
	// required for publication. A topic without a template cannot pass
	// publication validation.
	TemplateID *uuid.UUID

	Status TopicStatus

	// DevLabExercises is the polymorphic practice-exercise payload. It may
	// be absent, a JSON-encoded string, an array of exercises, or a
	// structured object. Decode with DecodeDevLabExercises before use.
	DevLabExercises json.RawMessage

	// UsageCount is incremented on every successful read/consumption of
	// the topic, including the post-publish usage bump.
	UsageCount int

	// CreatedBy is the trainer identity, or SystemAuthorID for topics
	// created by the generation pipeline.
	CreatedBy string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Content is one generated content row. At most one current row exists per
// (topic_id, content_type) pair; superseded rows move to the history store.
type Content struct {
	ID      uuid.UUID
	TopicID uuid.UUID

	ContentType ContentFormat

	// Data is the opaque per-format payload. Its shape varies by type and
	// is validated only at publication time.
	Data json.RawMessage

	// AudioURL is set for rows that carry narrated audio.
	AudioURL *string

	QualityCheckStatus QualityCheckStatus

	// GenerationMethodID identifies how the content was produced.
	GenerationMethodID int

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// ContentEntry is one slot in the fixed-size content set returned to
// downstream consumers. A format that has no current row is represented by
// an explicit placeholder with Status "missing", never by omission.
type ContentEntry struct {
	ContentType ContentFormat `json:"content_type"`
	Status      string        `json:"status"`
	Content     *Content      `json:"content,omitempty"`
}

// Content set entry statuses.
const (
	ContentEntryPresent = "present"
	ContentEntryMissing = "missing"
)

// BuildContentSet shapes the stored rows of a topic into the fixed-size
// six-entry set, adding missing placeholders. The text and audio slots
// fall back to a legacy text_audio row when no dedicated row exists.
func BuildContentSet(rows []*Content) []ContentEntry {
	byType := make(map[ContentFormat]*Content, len(rows))
	for _, row := range rows {
		if row.DeletedAt == nil {
			byType[row.ContentType] = row
		}
	}

	entries := make([]ContentEntry, 0, len(AllFormats()))
	for _, format := range AllFormats() {
		entry := ContentEntry{ContentType: format, Status: ContentEntryMissing}
		for _, alias := range format.RowAliases() {
			if row, ok := byType[alias]; ok {
				entry.Status = ContentEntryPresent
				entry.Content = row
				break
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

// Template defines which formats are required for a topic and their
// presentation order. Templates are immutable at use time.
type Template struct {
	ID   uuid.UUID
	Name string

	// FormatOrder names the required formats in presentation order. An
	// empty order makes every topic referencing the template fail
	// publication validation.
	FormatOrder []ContentFormat

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Course groups topics into a publishable unit.
type Course struct {
	ID          uuid.UUID
	Name        string
	Description string
	Status      CourseStatus
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// ValidationIssue is one publication-readiness finding for a topic. It is
// ephemeral: the validator only reads and reports, it never mutates topic
// or content state.
type ValidationIssue struct {
	Topic string `json:"topic"`
	Issue string `json:"issue"`
}

// ValidationResult is the outcome of a publication-readiness run.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationIssue `json:"errors"`
}

// GeneratedContent is the output of the generation collaborator for one
// format, before persistence.
type GeneratedContent struct {
	TopicID            uuid.UUID
	ContentType        ContentFormat
	GenerationMethodID int

	// Data is the raw payload returned by the collaborator.
	Data map[string]any

	// AudioURL is set when the collaborator produced narrated audio.
	AudioURL string
}

// VideoURL returns the avatar video reference embedded in the payload, or
// an empty string when none is present.
func (g *GeneratedContent) VideoURL() string {
	return stringField(g.Data, "videoUrl")
}

// EmbeddedError returns the error marker embedded in the payload, or an
// empty string. An avatar video generation that "succeeds" at the
// transport level is still a failure when this is non-empty.
func (g *GeneratedContent) EmbeddedError() string {
	return stringField(g.Data, "error")
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
