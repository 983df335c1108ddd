package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/events"
	"github.com/adri-yano/social-media-app/metrics"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/publisher"
	"github.com/adri-yano/social-media-app/repository"
)

type LikeHandler struct {
	likeRepo repository.LikeRepository
	metrics  *metrics.Metrics
	notifier *notifier
	logger   logrus.FieldLogger
}

func NewLikeHandler(likeRepo repository.LikeRepository, m *metrics.Metrics, n *notifier, logger logrus.FieldLogger) *LikeHandler {
	return &LikeHandler{
		likeRepo: likeRepo,
		metrics:  m,
		notifier: n,
		logger:   logger,
	}
}

// ToggleLike likes the post if the caller has not, and unlikes it otherwise.
func (h *LikeHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	postID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	liked, err := h.likeRepo.Toggle(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, h.logger, apperr.NotFound("post not found"))
			return
		}
		writeError(w, r, h.logger, fmt.Errorf("failed to toggle like: %w", err))
		return
	}
	h.metrics.RecordToggle("like", liked)

	h.notifier.emit(r, events.PostLiked, func(p *publisher.EventPublisher) error {
		return p.PublishPostLiked(events.PostLikedEvent{
			PostID:    postID,
			UserID:    userID,
			Liked:     liked,
			CreatedAt: time.Now(),
		})
	})

	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}
