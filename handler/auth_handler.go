package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/interceptor"
	"github.com/adri-yano/social-media-app/logging"
	models "github.com/adri-yano/social-media-app/model"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/pkg/password"
	"github.com/adri-yano/social-media-app/repository"
	"github.com/adri-yano/social-media-app/session"
)

const invalidCredentials = "invalid credentials"

type AuthHandler struct {
	users    repository.UserRepository
	sessions *session.Manager
	hasher   *password.Hasher
	logger   logrus.FieldLogger
}

func NewAuthHandler(users repository.UserRepository, sessions *session.Manager, hasher *password.Hasher, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := models.Validate(&in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	hash, err := h.hasher.Hash(in.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		var conflict *repository.ConflictError
		switch {
		case errors.As(err, &conflict):
			writeError(w, r, h.logger, apperr.Conflict(conflict.Field+" already in use").WithDetail(conflict.Field, "already in use"))
		case errors.Is(err, repository.ErrConflict):
			writeError(w, r, h.logger, apperr.Conflict("user already exists"))
		default:
			writeError(w, r, h.logger, fmt.Errorf("failed to create user: %w", err))
		}
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	logging.FromContext(r.Context(), h.logger).WithField("user_id", user.ID.String()).Info("User registered")
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := models.Validate(&in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.GetByIdentifier(r.Context(), in.Identifier)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, r, h.logger, apperr.Unauthorized(invalidCredentials))
		return
	case err != nil:
		writeError(w, r, h.logger, fmt.Errorf("failed to load user: %w", err))
		return
	}

	if !h.hasher.Verify(in.Password, user.PasswordHash) {
		writeError(w, r, h.logger, apperr.Unauthorized(invalidCredentials))
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Logout always clears the cookie. Revocation failures are logged only.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := session.TokenFromRequest(r); token != "" {
		if err := h.sessions.Revoke(r.Context(), token); err != nil {
			logging.FromContext(r.Context(), h.logger).WithError(err).Warn("Failed to revoke session")
		}
	}
	h.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the caller's user, or null for anonymous callers.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := interceptor.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusOK, map[string]interface{}{"user": nil})
		return
	case err != nil:
		writeError(w, r, h.logger, fmt.Errorf("failed to load user: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID uuid.UUID) error {
	token, expires, err := h.sessions.Issue(userID)
	if err != nil {
		return fmt.Errorf("failed to issue session: %w", err)
	}
	h.sessions.SetCookie(w, token, expires)
	return nil
}
