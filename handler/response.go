package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/adri-yano/social-media-app/interceptor"
	"github.com/adri-yano/social-media-app/logging"
	"github.com/adri-yano/social-media-app/pkg/apperr"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto the API taxonomy. Causes of server-side failures
// are logged and never returned.
func writeError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	appErr := apperr.From(err)
	status := appErr.Kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), logger).
			WithError(err).
			WithField("kind", string(appErr.Kind)).
			Error("request failed")
	}

	writeJSON(w, status, errorResponse{Error: appErr.Message, Details: appErr.Details})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperr.Validation("request body is required", nil)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required", nil)
		}
		return apperr.Validation("invalid JSON body", nil)
	}
	return nil
}

// pathUUID parses the named route variable as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperr.Validation(fmt.Sprintf("invalid %s format", name), map[string]string{name: "must be a valid UUID"})
	}
	return id, nil
}

// requireUser returns the authenticated caller. The gate already rejects
// anonymous callers on protected routes.
func requireUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := interceptor.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, apperr.Unauthorized("")
	}
	return userID, nil
}
