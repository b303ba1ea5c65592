package projector

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"hyderabadinfra/server/internal/eventbus"
	"hyderabadinfra/server/internal/events"
	"hyderabadinfra/server/internal/models"
)

// ActivityStore is the append side of the read model.
type ActivityStore interface {
	InsertActivity(rec models.ActivityRecord) error
	AppendEvent(e events.Event) error
}

// Projector builds the activity read model from user-activity events. It is
// an independent at-least-once consumer: it may lag behind commands and a
// redelivered event produces a duplicate-key insert error, which is logged
// and dropped.
type Projector struct {
	store  ActivityStore
	logger *logrus.Logger
}

func New(store ActivityStore, logger *logrus.Logger) *Projector {
	return &Projector{store: store, logger: logger}
}

// Attach subscribes the projector to the user-activity topic.
func (p *Projector) Attach(bus *eventbus.Bus) {
	bus.Subscribe(eventbus.TopicUserActivity, p.handle)
}

func (p *Projector) handle(topic string, data []byte) error {
	e, err := events.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode event on %s: %w", topic, err)
	}

	activity, ok := e.(*events.UserActivity)
	if !ok {
		p.logger.WithFields(logrus.Fields{
			"topic":      topic,
			"event_type": e.EventType(),
		}).Debug("Skipping non-activity event")
		return nil
	}

	if err := p.store.AppendEvent(activity); err != nil {
		p.logger.WithError(err).WithField("event_id", activity.EventID()).Error("Failed to append event to store")
	}

	rec := models.ActivityRecord{
		ActivityID:   activity.EventID(),
		UserID:       activity.UserID(),
		Timestamp:    activity.OccurredAt(),
		ActivityType: activity.ActivityType,
		Description:  activity.Description,
		ActivityData: string(activity.ActivityData),
	}
	if err := p.store.InsertActivity(rec); err != nil {
		return fmt.Errorf("failed to project activity %s: %w", rec.ActivityID, err)
	}

	p.logger.WithFields(logrus.Fields{
		"activity_id":   rec.ActivityID,
		"user_id":       rec.UserID,
		"activity_type": rec.ActivityType,
	}).Debug("Projected activity record")
	return nil
}
