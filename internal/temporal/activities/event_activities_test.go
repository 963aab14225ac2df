package activities

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/educoreai-lotus/content-studio/internal/events"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() error { return nil }

func TestPublishLifecycleEvent(t *testing.T) {
	publisher := &recordingPublisher{}
	act := NewEventActivities(publisher)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestActivityEnvironment()
	env.RegisterActivity(act.PublishLifecycleEvent)

	_, err := env.ExecuteActivity(act.PublishLifecycleEvent, events.Event{
		Type:    events.TopicGenerationStarted,
		TopicID: "topic-1",
	})
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.TopicGenerationStarted, publisher.events[0].Type)
	assert.Equal(t, "topic-1", publisher.events[0].TopicID)
}
