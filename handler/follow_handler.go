package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/events"
	"github.com/adri-yano/social-media-app/metrics"
	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/publisher"
	"github.com/adri-yano/social-media-app/repository"
)

type FollowHandler struct {
	repo     repository.FollowRepository
	users    repository.UserRepository
	metrics  *metrics.Metrics
	notifier *notifier
	logger   logrus.FieldLogger
}

func NewFollowHandler(repo repository.FollowRepository, users repository.UserRepository, m *metrics.Metrics, n *notifier, logger logrus.FieldLogger) *FollowHandler {
	return &FollowHandler{
		repo:     repo,
		users:    users,
		metrics:  m,
		notifier: n,
		logger:   logger,
	}
}

// ToggleFollow follows the target user if the caller does not already, and
// unfollows otherwise.
func (h *FollowHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	followerID, err := requireUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	followingID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if followerID == followingID {
		writeError(w, r, h.logger, apperr.Validation("users cannot follow themselves", map[string]string{"id": "must not be your own id"}))
		return
	}

	following, err := h.repo.Toggle(r.Context(), followerID, followingID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, r, h.logger, apperr.NotFound("user not found"))
		return
	case errors.Is(err, repository.ErrInvalid):
		writeError(w, r, h.logger, apperr.Validation("users cannot follow themselves", nil))
		return
	case err != nil:
		writeError(w, r, h.logger, fmt.Errorf("failed to toggle follow: %w", err))
		return
	}
	h.metrics.RecordToggle("follow", following)

	h.notifier.emit(r, events.UserFollowed, func(p *publisher.EventPublisher) error {
		return p.PublishUserFollowed(events.UserFollowedEvent{
			FollowerID:  followerID,
			FollowingID: followingID,
			Following:   following,
			CreatedAt:   time.Now(),
		})
	})

	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// GetFollowers lists the users following the path user, most recent first.
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.listAuthors(w, r, "followers", h.repo.ListFollowers)
}

// GetFollowing lists the users the path user follows, most recent first.
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.listAuthors(w, r, "following", h.repo.ListFollowing)
}

func (h *FollowHandler) listAuthors(w http.ResponseWriter, r *http.Request, key string, list func(ctx context.Context, id uuid.UUID) ([]*models.Author, error)) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.users.GetByID(r.Context(), userID); err != nil {
		writeError(w, r, h.logger, userLookupError(err))
		return
	}

	authors, err := list(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("failed to list %s: %w", key, err))
		return
	}
	if authors == nil {
		authors = []*models.Author{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{key: authors})
}
