package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/temporal"
	"github.com/educoreai-lotus/content-studio/internal/temporal/workflows"
)

// Request validation constants.
const (
	maxTranscriptLength = 1 << 20 // 1 MB of transcript text
	maxRequestBodySize  = 2 << 20
)

// generateRequest is the JSON request body for starting a generation run.
type generateRequest struct {
	Transcript string `json:"transcript"`
}

// generateResponse is returned when a generation workflow has been started.
type generateResponse struct {
	TopicID    string `json:"topic_id"`
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
	Message    string `json:"message"`
}

// publishResponse is returned when a publish workflow has been started.
type publishResponse struct {
	CourseID   string `json:"course_id"`
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`
	Message    string `json:"message"`
}

// topicResponse is the full topic view including the fixed-size content set.
type topicResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Description     string                `json:"description,omitempty"`
	Language        string                `json:"language,omitempty"`
	Skills          []string              `json:"skillsList,omitempty"`
	CourseID        *string               `json:"course_id,omitempty"`
	TemplateID      *string               `json:"template_id,omitempty"`
	Status          string                `json:"status"`
	DevLabExercises json.RawMessage       `json:"devlab_exercises,omitempty"`
	UsageCount      int                   `json:"usage_count"`
	Contents        []domain.ContentEntry `json:"contents"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// startGeneration handles POST /api/v1/topics/{topicID}/generate.
// It verifies the topic exists and starts the generation workflow.
func (s *Server) startGeneration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topicID, ok := parseUUID(w, chi.URLParam(r, "topicID"), "topic_id")
	if !ok {
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req generateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}

	req.Transcript = strings.TrimSpace(req.Transcript)
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}
	if len(req.Transcript) > maxTranscriptLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("transcript must be at most %d bytes", maxTranscriptLength))
		return
	}

	if _, err := s.topicRepo.Get(ctx, topicID); err != nil {
		writeDomainError(w, err)
		return
	}

	workflowID, runID, err := s.workflowClient.StartGenerationWorkflow(ctx, topicID, s.generationWorkflow, workflows.GenerationWorkflowInput{
		TopicID:    topicID,
		Transcript: req.Transcript,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, generateResponse{
		TopicID:    topicID.String(),
		WorkflowID: workflowID,
		RunID:      runID,
		Message:    "content generation started",
	})
}

// getTopic handles GET /api/v1/topics/{topicID}.
// It returns the topic together with its fixed-size content set.
func (s *Server) getTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	topicID, ok := parseUUID(w, chi.URLParam(r, "topicID"), "topic_id")
	if !ok {
		return
	}

	topic, err := s.topicRepo.Get(ctx, topicID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rows, err := s.contentRepo.ListCurrent(ctx, topicID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Successful reads count as consumption. Best effort: a failed bump
	// never fails the response.
	if err := s.topicRepo.IncrementUsage(ctx, topicID); err != nil {
		s.logger.Warn().Err(err).Str("topic_id", topicID.String()).Msg("Failed to increment topic usage")
	}

	writeJSON(w, http.StatusOK, topicToResponse(topic, domain.BuildContentSet(rows)))
}

// validateCourse handles GET /api/v1/courses/{courseID}/validation.
// It runs the read-only publication-readiness check so the UI can preview
// findings without attempting a publish.
func (s *Server) validateCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	courseID, ok := parseUUID(w, chi.URLParam(r, "courseID"), "course_id")
	if !ok {
		return
	}

	if _, err := s.courseRepo.Get(ctx, courseID); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := s.validator.Validate(ctx, courseID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// publishCourse handles POST /api/v1/courses/{courseID}/publish.
// It verifies the course exists and starts the publish workflow; validation
// findings surface in the workflow result, not here.
func (s *Server) publishCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	courseID, ok := parseUUID(w, chi.URLParam(r, "courseID"), "course_id")
	if !ok {
		return
	}

	if _, err := s.courseRepo.Get(ctx, courseID); err != nil {
		writeDomainError(w, err)
		return
	}

	workflowID, runID, err := s.workflowClient.StartPublishWorkflow(ctx, courseID, s.publishWorkflow, workflows.PublishWorkflowInput{
		CourseID: courseID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, publishResponse{
		CourseID:   courseID.String(),
		WorkflowID: workflowID,
		RunID:      runID,
		Message:    "course publish started",
	})
}

// topicToResponse shapes a domain topic and its content set for the API.
func topicToResponse(topic *domain.Topic, contents []domain.ContentEntry) topicResponse {
	resp := topicResponse{
		ID:              topic.ID.String(),
		Name:            topic.Name,
		Description:     topic.Description,
		Language:        topic.Language,
		Skills:          topic.Skills,
		Status:          string(topic.Status),
		DevLabExercises: topic.DevLabExercises,
		UsageCount:      topic.UsageCount,
		Contents:        contents,
		CreatedAt:       topic.CreatedAt,
		UpdatedAt:       topic.UpdatedAt,
	}
	if topic.CourseID != nil {
		id := topic.CourseID.String()
		resp.CourseID = &id
	}
	if topic.TemplateID != nil {
		id := topic.TemplateID.String()
		resp.TemplateID = &id
	}
	return resp
}

// writeDomainError maps domain and temporal errors to appropriate HTTP status
// codes and writes a JSON error response. Internal error details are not
// leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrMissingTopicID):
		writeError(w, http.StatusBadRequest, "topic id is required")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	case errors.Is(err, temporal.ErrWorkflowNotFound):
		writeError(w, http.StatusNotFound, "workflow not found")
	case errors.Is(err, temporal.ErrWorkflowAlreadyStarted):
		writeError(w, http.StatusConflict, "workflow already started")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID parses a UUID from a string, writing a 400 error response if
// invalid. The parse error details are not echoed back.
func parseUUID(w http.ResponseWriter, s, fieldName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", fieldName))
		return uuid.Nil, false
	}
	return id, true
}
