package publisher

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/events"
)

// Transport sends raw messages; *nats.Client satisfies it.
type Transport interface {
	Publish(subject string, data []byte) error
}

// EventPublisher marshals domain events and publishes them. A nil transport
// turns every call into a no-op.
type EventPublisher struct {
	nats   Transport
	logger logrus.FieldLogger
}

func NewEventPublisher(nats Transport, logger logrus.FieldLogger) *EventPublisher {
	return &EventPublisher{nats: nats, logger: logger}
}

// Enabled reports whether events reach a transport.
func (p *EventPublisher) Enabled() bool {
	return p != nil && p.nats != nil
}

func (p *EventPublisher) PublishPostCreated(event events.PostCreatedEvent) error {
	return p.publish(events.PostCreated, event.PostID.String(), event)
}

func (p *EventPublisher) PublishPostDeleted(event events.PostDeletedEvent) error {
	return p.publish(events.PostDeleted, event.PostID.String(), event)
}

func (p *EventPublisher) PublishPostLiked(event events.PostLikedEvent) error {
	return p.publish(events.PostLiked, event.PostID.String(), event)
}

func (p *EventPublisher) PublishCommentCreated(event events.CommentCreatedEvent) error {
	return p.publish(events.CommentCreated, event.CommentID.String(), event)
}

func (p *EventPublisher) PublishUserFollowed(event events.UserFollowedEvent) error {
	return p.publish(events.UserFollowed, event.FollowingID.String(), event)
}

func (p *EventPublisher) publish(subject, key string, event interface{}) error {
	if !p.Enabled() {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}

	if err := p.nats.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", subject, err)
	}

	p.logger.WithFields(logrus.Fields{"subject": subject, "key": key}).Debug("Published event")
	return nil
}
