// Package temporal provides the Temporal client and worker plumbing for
// the content generation and course publish workflows.
package temporal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/educoreai-lotus/content-studio/internal/config"
	"github.com/educoreai-lotus/content-studio/internal/observability"
)

// Default timeouts for workflow execution and health checks.
const (
	// DefaultGenerationExecutionTimeout bounds one generation workflow.
	// The six format tasks run concurrently under five-minute deadlines,
	// so a full run settles well inside this.
	DefaultGenerationExecutionTimeout = 30 * time.Minute

	// DefaultPublishExecutionTimeout bounds one publish workflow.
	DefaultPublishExecutionTimeout = 15 * time.Minute

	// DefaultHealthCheckTimeout is the timeout for server health checks.
	DefaultHealthCheckTimeout = 5 * time.Second
)

// Sentinel errors for Temporal operations.
var (
	// ErrWorkflowNotFound indicates the workflow execution was not found.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowAlreadyStarted indicates a workflow with the same ID is
	// already running.
	ErrWorkflowAlreadyStarted = errors.New("workflow already started")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("client closed")

	// ErrConnectionFailed indicates a connection failure to the server.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error wraps a Temporal SDK error with the operation and workflow it
// belongs to.
type Error struct {
	Op         string
	Kind       error
	WorkflowID string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.WorkflowID != "" {
		msg += fmt.Sprintf(" [workflowID=%s]", e.WorkflowID)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target matches this error's kind.
func (e *Error) Is(target error) bool { return errors.Is(e.Kind, target) }

// wrapError maps a Temporal SDK error to a sentinel-tagged Error.
func wrapError(op string, err error, workflowID string) error {
	if err == nil {
		return nil
	}

	te := &Error{Op: op, WorkflowID: workflowID, Err: err}

	var notFound *serviceerror.NotFound
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	var invalidArgument *serviceerror.InvalidArgument

	switch {
	case errors.As(err, &notFound):
		te.Kind = ErrWorkflowNotFound
	case errors.As(err, &alreadyStarted):
		te.Kind = ErrWorkflowAlreadyStarted
	case errors.As(err, &invalidArgument):
		te.Kind = ErrInvalidArgument
	case errors.Is(err, context.Canceled):
		te.Kind = ErrClientClosed
	default:
		te.Kind = ErrConnectionFailed
	}
	return te
}

// NewClient dials the Temporal server. The SDK's own log output is routed
// through the service logger.
func NewClient(cfg config.TemporalConfig, logger zerolog.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    observability.NewTemporalLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("create Temporal client: %w", err)
	}
	return c, nil
}

// GenerationWorkflowIDFor returns the deterministic workflow ID for a
// topic's generation run. One topic has at most one in-flight run.
func GenerationWorkflowIDFor(topicID uuid.UUID) string {
	return fmt.Sprintf("generate-%s", topicID)
}

// PublishWorkflowIDFor returns the deterministic workflow ID for a
// course's publish run.
func PublishWorkflowIDFor(courseID uuid.UUID) string {
	return fmt.Sprintf("publish-%s", courseID)
}

// WorkflowClient starts and inspects content workflows. It is safe for
// concurrent use.
type WorkflowClient struct {
	mu                 sync.RWMutex
	client             client.Client
	taskQueue          string
	healthCheckTimeout time.Duration
	closed             bool
}

// NewWorkflowClient creates a WorkflowClient over an established
// connection.
func NewWorkflowClient(c client.Client, taskQueue string) *WorkflowClient {
	return &WorkflowClient{
		client:             c,
		taskQueue:          taskQueue,
		healthCheckTimeout: DefaultHealthCheckTimeout,
	}
}

// Close closes the underlying connection.
func (c *WorkflowClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && !c.closed {
		c.client.Close()
		c.closed = true
	}
}

func (c *WorkflowClient) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Health checks the connection to the Temporal server.
func (c *WorkflowClient) Health(ctx context.Context) error {
	if c.isClosed() {
		return &Error{Op: "Health", Kind: ErrClientClosed}
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.healthCheckTimeout)
	defer cancel()

	if _, err := c.client.CheckHealth(checkCtx, &client.CheckHealthRequest{}); err != nil {
		return wrapError("Health", err, "")
	}
	return nil
}

// StartGenerationWorkflow starts the content generation workflow for a
// topic.
func (c *WorkflowClient) StartGenerationWorkflow(ctx context.Context, topicID uuid.UUID, workflowFunc any, input any) (workflowID, runID string, err error) {
	if c.isClosed() {
		return "", "", &Error{Op: "StartGenerationWorkflow", Kind: ErrClientClosed}
	}

	workflowID = GenerationWorkflowIDFor(topicID)
	run, err := c.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                c.taskQueue,
		WorkflowExecutionTimeout: DefaultGenerationExecutionTimeout,
	}, workflowFunc, input)
	if err != nil {
		return "", "", wrapError("StartGenerationWorkflow", err, workflowID)
	}
	return workflowID, run.GetRunID(), nil
}

// StartPublishWorkflow starts the publish workflow for a course.
func (c *WorkflowClient) StartPublishWorkflow(ctx context.Context, courseID uuid.UUID, workflowFunc any, input any) (workflowID, runID string, err error) {
	if c.isClosed() {
		return "", "", &Error{Op: "StartPublishWorkflow", Kind: ErrClientClosed}
	}

	workflowID = PublishWorkflowIDFor(courseID)
	run, err := c.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                c.taskQueue,
		WorkflowExecutionTimeout: DefaultPublishExecutionTimeout,
	}, workflowFunc, input)
	if err != nil {
		return "", "", wrapError("StartPublishWorkflow", err, workflowID)
	}
	return workflowID, run.GetRunID(), nil
}

// GetWorkflowResult waits for a workflow to complete and decodes its
// result into result.
func (c *WorkflowClient) GetWorkflowResult(ctx context.Context, workflowID, runID string, result any) error {
	if c.isClosed() {
		return &Error{Op: "GetWorkflowResult", Kind: ErrClientClosed, WorkflowID: workflowID}
	}

	run := c.client.GetWorkflow(ctx, workflowID, runID)
	if err := run.Get(ctx, result); err != nil {
		return wrapError("GetWorkflowResult", err, workflowID)
	}
	return nil
}

// Client returns the underlying Temporal client.
func (c *WorkflowClient) Client() client.Client { return c.client }

// TaskQueue returns the configured task queue name.
func (c *WorkflowClient) TaskQueue() string { return c.taskQueue }
