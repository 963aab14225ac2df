package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/educoreai-lotus/content-studio/internal/events"
)

// EventActivities publishes lifecycle events from workflows. Publishing
// is fire-and-forget: the publisher swallows broker failures and the
// activity never fails, so an event outage cannot fail a workflow.
type EventActivities struct {
	publisher events.Publisher
}

// NewEventActivities creates the event activity set.
func NewEventActivities(publisher events.Publisher) *EventActivities {
	return &EventActivities{publisher: publisher}
}

// PublishLifecycleEvent emits one lifecycle event.
func (a *EventActivities) PublishLifecycleEvent(ctx context.Context, event events.Event) error {
	logger := activity.GetLogger(ctx)
	logger.Info("publishing lifecycle event", "eventType", event.Type)

	a.publisher.Publish(ctx, event)
	return nil
}
