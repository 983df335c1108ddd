package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/events"
	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/publisher"
	"github.com/adri-yano/social-media-app/repository"
)

const invalidParent = "must reference a top-level comment on the same post"

type CommentHandler struct {
	repo     repository.CommentRepository
	posts    repository.PostRepository
	notifier *notifier
	logger   logrus.FieldLogger
}

func NewCommentHandler(repo repository.CommentRepository, posts repository.PostRepository, n *notifier, logger logrus.FieldLogger) *CommentHandler {
	return &CommentHandler{
		repo:     repo,
		posts:    posts,
		notifier: n,
		logger:   logger,
	}
}

// GetComments lists a post's top-level comments oldest first, each with its
// replies.
func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.posts.GetByID(r.Context(), postID); err != nil {
		writeError(w, r, h.logger, postLookupError(err))
		return
	}

	comments, err := h.repo.ListByPost(r.Context(), postID)
	if err != nil {
		writeError(w, r, h.logger, fmt.Errorf("failed to list comments: %w", err))
		return
	}
	if comments == nil {
		comments = []*models.CommentView{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// CreateComment adds a comment to a post. A reply's parent must be a
// top-level comment on the same post.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
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

	if _, err := h.posts.GetByID(r.Context(), postID); err != nil {
		writeError(w, r, h.logger, postLookupError(err))
		return
	}

	var in models.CreateCommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := models.Validate(&in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if in.ParentCommentID != nil {
		if err := h.checkParent(r, postID, *in.ParentCommentID); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}

	now := time.Now()
	comment := &models.Comment{
		ID:              uuid.New(),
		Content:         in.Content,
		PostID:          postID,
		AuthorID:        userID,
		ParentCommentID: in.ParentCommentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.repo.Create(r.Context(), comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, h.logger, apperr.NotFound("post not found"))
			return
		}
		writeError(w, r, h.logger, fmt.Errorf("failed to create comment: %w", err))
		return
	}

	h.notifier.emit(r, events.CommentCreated, func(p *publisher.EventPublisher) error {
		return p.PublishCommentCreated(events.CommentCreatedEvent{
			CommentID:       comment.ID,
			PostID:          postID,
			UserID:          userID,
			ParentCommentID: comment.ParentCommentID,
			Content:         comment.Content,
			CreatedAt:       comment.CreatedAt,
		})
	})

	view, err := h.repo.GetView(r.Context(), comment.ID)
	if err != nil {
		writeError(w, r, h.logger, commentLookupError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"comment": view})
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	existing, err := h.loadOwned(r, "you can only update your own comments")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var in models.UpdateCommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := models.Validate(&in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.repo.Update(r.Context(), existing.ID, in.Content); err != nil {
		writeError(w, r, h.logger, commentLookupError(err))
		return
	}

	view, err := h.repo.GetView(r.Context(), existing.ID)
	if err != nil {
		writeError(w, r, h.logger, commentLookupError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"comment": view})
}

// DeleteComment removes a comment and its replies.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	existing, err := h.loadOwned(r, "you can only delete your own comments")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.repo.Delete(r.Context(), existing.ID); err != nil {
		writeError(w, r, h.logger, commentLookupError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *CommentHandler) loadOwned(r *http.Request, forbidden string) (*models.Comment, error) {
	userID, err := requireUser(r)
	if err != nil {
		return nil, err
	}
	commentID, err := pathUUID(r, "id")
	if err != nil {
		return nil, err
	}

	comment, err := h.repo.GetByID(r.Context(), commentID)
	if err != nil {
		return nil, commentLookupError(err)
	}
	if comment.AuthorID != userID {
		return nil, apperr.Forbidden(forbidden)
	}
	return comment, nil
}

func (h *CommentHandler) checkParent(r *http.Request, postID, parentID uuid.UUID) error {
	parent, err := h.repo.GetByID(r.Context(), parentID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.Validation("invalid parent comment", map[string]string{"parentCommentId": invalidParent})
	case err != nil:
		return fmt.Errorf("failed to load parent comment: %w", err)
	}

	if parent.PostID != postID || parent.ParentCommentID != nil {
		return apperr.Validation("invalid parent comment", map[string]string{"parentCommentId": invalidParent})
	}
	return nil
}

func commentLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("comment not found")
	}
	return fmt.Errorf("failed to load comment: %w", err)
}
