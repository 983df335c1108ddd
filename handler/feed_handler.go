package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/interceptor"
	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/service"
)

type FeedHandler struct {
	feed   service.FeedBuilder
	logger logrus.FieldLogger
}

func NewFeedHandler(feed service.FeedBuilder, logger logrus.FieldLogger) *FeedHandler {
	return &FeedHandler{
		feed:   feed,
		logger: logger,
	}
}

// ListPosts serves the global list and its filtered variants: authorId,
// authorUsername, q (case-insensitive substring) and feed=following.
func (h *FeedHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := service.FeedRequest{
		Viewer:         interceptor.OptionalUserID(r.Context()),
		AuthorUsername: strings.TrimSpace(query.Get("authorUsername")),
		Query:          strings.TrimSpace(query.Get("q")),
		Following:      query.Get("feed") == "following",
	}

	if raw := query.Get("authorId"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, h.logger, apperr.Validation("invalid authorId format", map[string]string{"authorId": "must be a valid UUID"}))
			return
		}
		req.AuthorID = &authorID
	}

	posts, err := h.feed.List(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if posts == nil {
		posts = []*models.PostView{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}
