package publisher

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adri-yano/social-media-app/events"
)

type message struct {
	subject string
	data    []byte
}

type recorder struct {
	messages []message
	err      error
}

func (r *recorder) Publish(subject string, data []byte) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, message{subject, data})
	return nil
}

func TestEventPublisher_Publishes(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rec := &recorder{}
	p := NewEventPublisher(rec, logger)

	event := events.PostLikedEvent{PostID: uuid.New(), UserID: uuid.New(), Liked: true, CreatedAt: time.Now().UTC()}
	require.NoError(t, p.PublishPostLiked(event))
	require.Len(t, rec.messages, 1)
	assert.Equal(t, events.PostLiked, rec.messages[0].subject)

	var decoded events.PostLikedEvent
	require.NoError(t, json.Unmarshal(rec.messages[0].data, &decoded))
	assert.Equal(t, event.PostID, decoded.PostID)
	assert.True(t, decoded.Liked)

	require.NoError(t, p.PublishUserFollowed(events.UserFollowedEvent{FollowerID: uuid.New(), FollowingID: uuid.New(), Following: true}))
	assert.Equal(t, events.UserFollowed, rec.messages[1].subject)
}

func TestEventPublisher_TransportError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	p := NewEventPublisher(&recorder{err: errors.New("nats down")}, logger)

	err := p.PublishPostCreated(events.PostCreatedEvent{PostID: uuid.New()})
	assert.ErrorContains(t, err, "nats down")
}

func TestEventPublisher_Disabled(t *testing.T) {
	var nilPublisher *EventPublisher
	assert.NoError(t, nilPublisher.PublishPostDeleted(events.PostDeletedEvent{PostID: uuid.New()}))

	logger, _ := test.NewNullLogger()
	assert.NoError(t, NewEventPublisher(nil, logger).PublishCommentCreated(events.CommentCreatedEvent{CommentID: uuid.New()}))
}
