// Package httpserver provides the HTTP REST API server for the content
// studio service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/database"
	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/repository"
)

// WorkflowClient defines the workflow operations used by the HTTP server.
type WorkflowClient interface {
	StartGenerationWorkflow(ctx context.Context, topicID uuid.UUID, workflowFunc any, input any) (workflowID, runID string, err error)
	StartPublishWorkflow(ctx context.Context, courseID uuid.UUID, workflowFunc any, input any) (workflowID, runID string, err error)
	Health(ctx context.Context) error
}

// CourseValidator runs the read-only publication-readiness check.
type CourseValidator interface {
	Validate(ctx context.Context, courseID uuid.UUID) (*domain.ValidationResult, error)
}

// Server is the HTTP REST API server.
type Server struct {
	router             chi.Router
	httpServer         *http.Server
	workflowClient     WorkflowClient
	generationWorkflow any
	publishWorkflow    any
	topicRepo          repository.TopicRepository
	contentRepo        repository.ContentRepository
	courseRepo         repository.CourseRepository
	validator          CourseValidator
	db                 *database.DB
	logger             zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new HTTP server with all dependencies.
// generationWorkflow and publishWorkflow are the Temporal workflow function
// references (e.g. workflows.ContentGenerationWorkflow) passed through to the
// workflow client when a run is started.
func NewServer(
	cfg Config,
	workflowClient WorkflowClient,
	generationWorkflow any,
	publishWorkflow any,
	topicRepo repository.TopicRepository,
	contentRepo repository.ContentRepository,
	courseRepo repository.CourseRepository,
	validator CourseValidator,
	db *database.DB,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		workflowClient:     workflowClient,
		generationWorkflow: generationWorkflow,
		publishWorkflow:    publishWorkflow,
		topicRepo:          topicRepo,
		contentRepo:        contentRepo,
		courseRepo:         courseRepo,
		validator:          validator,
		db:                 db,
		logger:             logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)
	r.Use(s.requestLogMiddleware)
	r.Use(jsonContentTypeMiddleware)

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/topics/{topicID}/generate", s.startGeneration)
		r.Get("/topics/{topicID}", s.getTopic)
		r.Get("/courses/{courseID}/validation", s.validateCourse)
		r.Post("/courses/{courseID}/publish", s.publishCourse)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status including Temporal connectivity.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	if err := s.workflowClient.Health(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": "healthy",
			"temporal": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
		"temporal": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
