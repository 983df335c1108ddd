package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/interceptor"
	"github.com/adri-yano/social-media-app/logging"
	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/repository"
	"github.com/adri-yano/social-media-app/storage"
)

type UserHandler struct {
	repo     repository.UserRepository
	uploader *mediaUploader
	logger   logrus.FieldLogger
}

func NewUserHandler(repo repository.UserRepository, uploader *mediaUploader, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		repo:     repo,
		uploader: uploader,
		logger:   logger,
	}
}

// GetProfile returns a user with derived counts. The email is only included
// for the user's own profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	viewer := interceptor.OptionalUserID(r.Context())
	profile, err := h.repo.GetProfile(r.Context(), userID, viewer)
	if err != nil {
		writeError(w, r, h.logger, userLookupError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": profile.ForViewer(viewer)})
}

func (h *UserHandler) GetProfileByUsername(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if username == "" {
		writeError(w, r, h.logger, apperr.Validation("username is required", nil))
		return
	}

	viewer := interceptor.OptionalUserID(r.Context())
	profile, err := h.repo.GetProfileByUsername(r.Context(), username, viewer)
	if err != nil {
		writeError(w, r, h.logger, userLookupError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": profile.ForViewer(viewer)})
}

// UpdateProfile applies a partial update to the caller's own profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, targetID, err := h.authorizeSelf(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var in models.UpdateUserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := models.Validate(&in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.repo.Update(r.Context(), targetID, &in)
	if err != nil {
		writeError(w, r, h.logger, userLookupError(err))
		return
	}

	logging.FromContext(r.Context(), h.logger).WithField("user_id", userID.String()).Debug("Profile updated")
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UploadAvatar stores the multipart "file" part and sets it as the avatar.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _, err := h.authorizeSelf(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	url, err := h.uploader.requireFile(w, r, storage.ScopeAvatars, userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.repo.Update(r.Context(), userID, &models.UpdateUserInput{Avatar: models.StringValue(url)})
	if err != nil {
		writeError(w, r, h.logger, userLookupError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// authorizeSelf checks the target user exists and is the caller.
func (h *UserHandler) authorizeSelf(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	userID, err := requireUser(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	targetID, err := pathUUID(r, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	if _, err := h.repo.GetByID(r.Context(), targetID); err != nil {
		return uuid.Nil, uuid.Nil, userLookupError(err)
	}
	if targetID != userID {
		return uuid.Nil, uuid.Nil, apperr.Forbidden("you can only update your own profile")
	}
	return userID, targetID, nil
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	return fmt.Errorf("failed to load user: %w", err)
}
