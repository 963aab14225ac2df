package temporal

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

// WorkerConfig contains tuning for the Temporal worker. Zero-valued
// fields fall back to defaults.
type WorkerConfig struct {
	// TaskQueue is the name of the task queue to poll.
	TaskQueue string

	// MaxConcurrentActivityExecutionSize caps concurrent activity
	// executions. A generation activity fans out six format tasks
	// internally, so this stays modest.
	MaxConcurrentActivityExecutionSize int

	// MaxConcurrentWorkflowTaskExecutionSize caps concurrent workflow
	// task executions.
	MaxConcurrentWorkflowTaskExecutionSize int
}

// DefaultWorkerConfig returns a WorkerConfig with default values.
func DefaultWorkerConfig(taskQueue string) WorkerConfig {
	return WorkerConfig{
		TaskQueue:                              taskQueue,
		MaxConcurrentActivityExecutionSize:     20,
		MaxConcurrentWorkflowTaskExecutionSize: 50,
	}
}

// WorkerManager manages the lifecycle of a Temporal worker.
type WorkerManager struct {
	worker    worker.Worker
	taskQueue string
}

// NewWorkerManager creates a worker over an established connection.
func NewWorkerManager(c client.Client, cfg WorkerConfig) (*WorkerManager, error) {
	if cfg.TaskQueue == "" {
		return nil, fmt.Errorf("task queue is required")
	}

	options := worker.Options{
		MaxConcurrentActivityExecutionSize:     cfg.MaxConcurrentActivityExecutionSize,
		MaxConcurrentWorkflowTaskExecutionSize: cfg.MaxConcurrentWorkflowTaskExecutionSize,
	}
	if options.MaxConcurrentActivityExecutionSize == 0 {
		options.MaxConcurrentActivityExecutionSize = 20
	}
	if options.MaxConcurrentWorkflowTaskExecutionSize == 0 {
		options.MaxConcurrentWorkflowTaskExecutionSize = 50
	}

	return &WorkerManager{
		worker:    worker.New(c, cfg.TaskQueue, options),
		taskQueue: cfg.TaskQueue,
	}, nil
}

// RegisterWorkflow registers a workflow function with the worker.
func (m *WorkerManager) RegisterWorkflow(workflow any) {
	m.worker.RegisterWorkflow(workflow)
}

// RegisterActivity registers an activity function or struct with the
// worker.
func (m *WorkerManager) RegisterActivity(activity any) {
	m.worker.RegisterActivity(activity)
}

// TaskQueue returns the configured task queue name.
func (m *WorkerManager) TaskQueue() string { return m.taskQueue }

// Start runs the worker and blocks until the context is cancelled or the
// worker fails.
func (m *WorkerManager) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.worker.Run(worker.InterruptCh())
	}()

	select {
	case <-ctx.Done():
		m.worker.Stop()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Stop stops the worker gracefully.
func (m *WorkerManager) Stop() {
	m.worker.Stop()
}
