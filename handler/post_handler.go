package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/events"
	"github.com/adri-yano/social-media-app/interceptor"
	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/publisher"
	"github.com/adri-yano/social-media-app/repository"
	"github.com/adri-yano/social-media-app/storage"
)

type PostHandler struct {
	repo     repository.PostRepository
	uploader *mediaUploader
	notifier *notifier
	logger   logrus.FieldLogger
}

func NewPostHandler(repo repository.PostRepository, uploader *mediaUploader, n *notifier, logger logrus.FieldLogger) *PostHandler {
	return &PostHandler{
		repo:     repo,
		uploader: uploader,
		notifier: n,
		logger:   logger,
	}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var in models.CreatePostInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := models.Validate(&in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	now := time.Now()
	post := &models.Post{
		ID:        uuid.New(),
		Content:   in.Content,
		Image:     in.Image,
		AuthorID:  userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Create(r.Context(), post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, r, h.logger, apperr.Unauthorized("session user no longer exists"))
			return
		}
		writeError(w, r, h.logger, fmt.Errorf("failed to create post: %w", err))
		return
	}

	h.notifier.emit(r, events.PostCreated, func(p *publisher.EventPublisher) error {
		return p.PublishPostCreated(events.PostCreatedEvent{
			PostID:    post.ID,
			UserID:    userID,
			Content:   post.Content,
			CreatedAt: post.CreatedAt,
		})
	})

	view, err := h.repo.GetView(r.Context(), post.ID, &userID)
	if err != nil {
		writeError(w, r, h.logger, postLookupError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"post": view})
}

// UploadImage stores a post image ahead of post creation and returns its URL.
func (h *PostHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	url, err := h.uploader.requireFile(w, r, storage.ScopePosts, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	view, err := h.repo.GetView(r.Context(), postID, interceptor.OptionalUserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, postLookupError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"post": view})
}

// UpdatePost accepts either a JSON body or a multipart form. In the form,
// "content" is optional, an "image" file replaces the image and the value
// "null" removes it. The file is stored only once the input is valid.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, existing, err := h.loadOwned(r, "you can only update your own posts")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var (
		in    *models.UpdatePostInput
		image *multipart.FileHeader
	)
	if isMultipart(r) {
		in, image, err = h.readMultipartUpdate(w, r)
	} else {
		in = &models.UpdatePostInput{}
		err = decodeJSON(r, in)
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := models.Validate(in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if image != nil {
		url, err := h.uploader.save(r.Context(), storage.ScopePosts, userID, image)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		in.Image = models.StringValue(url)
	}

	if !in.Empty() {
		if _, err := h.repo.Update(r.Context(), existing.ID, in); err != nil {
			writeError(w, r, h.logger, postLookupError(err))
			return
		}
	}

	view, err := h.repo.GetView(r.Context(), existing.ID, &userID)
	if err != nil {
		writeError(w, r, h.logger, postLookupError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"post": view})
}

// DeletePost removes a post together with its likes and comments.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, existing, err := h.loadOwned(r, "you can only delete your own posts")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.repo.Delete(r.Context(), existing.ID); err != nil {
		writeError(w, r, h.logger, postLookupError(err))
		return
	}

	h.notifier.emit(r, events.PostDeleted, func(p *publisher.EventPublisher) error {
		return p.PublishPostDeleted(events.PostDeletedEvent{
			PostID:    existing.ID,
			UserID:    userID,
			DeletedAt: time.Now(),
		})
	})

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// loadOwned resolves the caller and the post, in that order, and checks
// the caller authored it.
func (h *PostHandler) loadOwned(r *http.Request, forbidden string) (uuid.UUID, *models.Post, error) {
	userID, err := requireUser(r)
	if err != nil {
		return uuid.Nil, nil, err
	}
	postID, err := pathUUID(r, "id")
	if err != nil {
		return uuid.Nil, nil, err
	}

	post, err := h.repo.GetByID(r.Context(), postID)
	if err != nil {
		return uuid.Nil, nil, postLookupError(err)
	}
	if post.AuthorID != userID {
		return uuid.Nil, nil, apperr.Forbidden(forbidden)
	}
	return userID, post, nil
}

// readMultipartUpdate returns the form's update and, when one was sent, the
// replacement image still to be uploaded.
func (h *PostHandler) readMultipartUpdate(w http.ResponseWriter, r *http.Request) (*models.UpdatePostInput, *multipart.FileHeader, error) {
	if err := h.uploader.parseForm(w, r); err != nil {
		return nil, nil, err
	}

	in := &models.UpdatePostInput{}
	if values, ok := r.MultipartForm.Value["content"]; ok && len(values) > 0 {
		content := values[0]
		in.Content = &content
	}

	if fh, ok := formFile(r, "image"); ok {
		return in, fh, nil
	}
	if values := r.MultipartForm.Value["image"]; len(values) > 0 && values[0] == "null" {
		in.Image = models.Null()
	}
	return in, nil, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func postLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("post not found")
	}
	return fmt.Errorf("failed to load post: %w", err)
}
