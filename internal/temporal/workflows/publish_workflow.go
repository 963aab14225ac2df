package workflows

import (
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/events"
	"github.com/educoreai-lotus/content-studio/internal/temporal/activities"
)

// PublishWorkflowInput is the input for CoursePublishWorkflow.
type PublishWorkflowInput struct {
	// CourseID identifies the course to publish.
	CourseID uuid.UUID `json:"course_id"`
}

// PublishWorkflowResult is the result of CoursePublishWorkflow.
type PublishWorkflowResult struct {
	// Published reports whether the handoff reached the downstream
	// publishing system.
	Published bool `json:"published"`

	// Validation carries the readiness findings. When the course is not
	// ready, Published is false and these findings explain why.
	Validation *domain.ValidationResult `json:"validation"`
}

// CoursePublishWorkflow orchestrates a course publish: validate, hand the
// course off to the downstream publishing system, then run the three
// post-transfer hooks.
//
// Validation findings block the transfer but complete the workflow
// normally so callers can read them from the result. Only the transfer
// step fails the workflow. The three hooks and the lifecycle events are
// best effort: each runs regardless of the others and a failure is
// logged, never surfaced.
func CoursePublishWorkflow(ctx workflow.Context, input PublishWorkflowInput) (*PublishWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting course publish workflow", "courseID", input.CourseID)

	var publishAct *activities.PublishActivities
	var eventAct *activities.EventActivities

	readCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	})
	transferCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    3,
		},
	})
	hookCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 2,
		},
	})
	eventCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    2,
		},
	})

	courseInput := activities.CourseInput{CourseID: input.CourseID}

	var validation domain.ValidationResult
	err := workflow.ExecuteActivity(readCtx, publishAct.ValidateCourse, courseInput).Get(ctx, &validation)
	if err != nil {
		logger.Error("validation failed", "courseID", input.CourseID, "error", err)
		return nil, err
	}
	if !validation.Valid {
		logger.Warn("publish blocked by validation findings",
			"courseID", input.CourseID,
			"issues", len(validation.Errors),
		)
		return &PublishWorkflowResult{Published: false, Validation: &validation}, nil
	}

	var transferOut activities.TransferOutput
	err = workflow.ExecuteActivity(transferCtx, publishAct.TransferCourse, courseInput).Get(ctx, &transferOut)
	if err != nil {
		logger.Error("transfer failed", "courseID", input.CourseID, "error", err)
		emitEvent(eventCtx, eventAct, events.Event{
			Type:     events.CoursePublishFailed,
			CourseID: input.CourseID.String(),
			Payload:  map[string]any{"reason": err.Error()},
		})
		return nil, err
	}

	// The handoff succeeded; hook failures must not unwind it.
	topicSet := activities.TopicSetInput{CourseID: input.CourseID, TopicIDs: transferOut.TopicIDs}
	runHook(hookCtx, "usage increment", publishAct.IncrementTopicUsage, topicSet)
	runHook(hookCtx, "course archival", publishAct.ArchiveCourse, courseInput)
	runHook(hookCtx, "archive cleanup", publishAct.CleanupArchives, topicSet)

	emitEvent(eventCtx, eventAct, events.Event{
		Type:     events.CoursePublishSucceeded,
		CourseID: input.CourseID.String(),
		Payload:  map[string]any{"topics": len(transferOut.TopicIDs)},
	})

	logger.Info("course publish workflow completed", "courseID", input.CourseID)
	return &PublishWorkflowResult{Published: true, Validation: &validation}, nil
}

// runHook executes one best-effort post-transfer activity, logging and
// swallowing failures.
func runHook(ctx workflow.Context, name string, hook any, input any) {
	if err := workflow.ExecuteActivity(ctx, hook, input).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("post-transfer hook failed", "hook", name, "error", err)
	}
}
