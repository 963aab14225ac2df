package workflows

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/educoreai-lotus/content-studio/internal/events"
	"github.com/educoreai-lotus/content-studio/internal/generation"
	"github.com/educoreai-lotus/content-studio/internal/temporal/activities"
)

func TestContentGenerationWorkflow(t *testing.T) {
	t.Run("completes and reports the settled aggregate", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()

		topicID := uuid.New()

		var generationAct *activities.GenerationActivities
		var eventAct *activities.EventActivities

		contentID := uuid.New()
		aggregate := &generation.Aggregate{
			TopicID: topicID,
			ContentFormats: map[string]generation.FormatResult{
				"text_audio":    {Generated: true, Status: generation.StatusCompleted, ContentID: &contentID},
				"code_examples": {Generated: true, Status: generation.StatusCompleted, ContentID: &contentID},
				"slides":        {Generated: true, Status: generation.StatusCompleted, ContentID: &contentID},
				"audio":         {Generated: true, Status: generation.StatusCompleted, ContentID: &contentID},
				"mind_map":      {Generated: true, Status: generation.StatusCompleted, ContentID: &contentID},
				"avatar_video":  {Generated: true, Status: generation.StatusCompleted, ContentID: &contentID},
			},
		}

		var published []string
		env.OnActivity(eventAct.PublishLifecycleEvent, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				event := args.Get(1).(events.Event)
				published = append(published, event.Type)
			}).Return(nil)

		env.OnActivity(generationAct.RunGeneration, mock.Anything, activities.RunGenerationInput{
			TopicID:    topicID,
			Transcript: "transcript body",
		}).Return(aggregate, nil)

		env.ExecuteWorkflow(ContentGenerationWorkflow, GenerationWorkflowInput{
			TopicID:    topicID,
			Transcript: "transcript body",
		})

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())

		var result GenerationWorkflowResult
		require.NoError(t, env.GetWorkflowResult(&result))
		require.NotNil(t, result.Aggregate)
		assert.Len(t, result.Aggregate.ContentFormats, 6)

		assert.Equal(t, []string{
			events.TopicGenerationStarted,
			events.TopicGenerationCompleted,
		}, published)
	})

	t.Run("emits failed event when the run fails", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()

		var generationAct *activities.GenerationActivities
		var eventAct *activities.EventActivities

		var published []string
		env.OnActivity(eventAct.PublishLifecycleEvent, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				event := args.Get(1).(events.Event)
				published = append(published, event.Type)
			}).Return(nil)

		env.OnActivity(generationAct.RunGeneration, mock.Anything, mock.Anything).
			Return(nil, errors.New("topic id is required"))

		env.ExecuteWorkflow(ContentGenerationWorkflow, GenerationWorkflowInput{
			TopicID:    uuid.New(),
			Transcript: "transcript",
		})

		require.True(t, env.IsWorkflowCompleted())
		require.Error(t, env.GetWorkflowError())
		assert.Equal(t, []string{
			events.TopicGenerationStarted,
			events.TopicGenerationFailed,
		}, published)
	})

	t.Run("event outage does not fail the workflow", func(t *testing.T) {
		testSuite := &testsuite.WorkflowTestSuite{}
		env := testSuite.NewTestWorkflowEnvironment()

		var generationAct *activities.GenerationActivities
		var eventAct *activities.EventActivities

		env.OnActivity(eventAct.PublishLifecycleEvent, mock.Anything, mock.Anything).
			Return(errors.New("broker unavailable"))
		env.OnActivity(generationAct.RunGeneration, mock.Anything, mock.Anything).
			Return(&generation.Aggregate{TopicID: uuid.New()}, nil)

		env.ExecuteWorkflow(ContentGenerationWorkflow, GenerationWorkflowInput{
			TopicID:    uuid.New(),
			Transcript: "transcript",
		})

		require.True(t, env.IsWorkflowCompleted())
		require.NoError(t, env.GetWorkflowError())
	})
}
