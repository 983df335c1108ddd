package interceptor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/adri-yano/social-media-app/logging"
)

// ContextKey type for context keys
type ContextKey string

const (
	UserIDKey ContextKey = "user_id"
)

// SessionReader resolves a session token to a user id.
type SessionReader interface {
	Read(ctx context.Context, token string) (uuid.UUID, bool)
}

// AuthInterceptor derives the caller's identity from the session cookie and
// rejects anonymous requests to routes that are not public.
type AuthInterceptor struct {
	sessions     SessionReader
	tokenFrom    func(*http.Request) string
	publicRoutes map[string]bool
	loginPath    string
}

// NewAuthInterceptor creates a new auth interceptor with public route names
func NewAuthInterceptor(sessions SessionReader, tokenFrom func(*http.Request) string, publicRoutes []string) *AuthInterceptor {
	routeMap := make(map[string]bool)
	for _, name := range publicRoutes {
		routeMap[name] = true
	}

	return &AuthInterceptor{
		sessions:     sessions,
		tokenFrom:    tokenFrom,
		publicRoutes: routeMap,
		loginPath:    "/login",
	}
}

// Middleware is a mux.MiddlewareFunc. It runs after route matching so the
// matched route name decides whether identity is required.
func (interceptor *AuthInterceptor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := interceptor.sessions.Read(r.Context(), interceptor.tokenFrom(r))
		if ok {
			ctx := WithUserID(r.Context(), userID)
			if entry, found := logging.EntryFromContext(ctx); found {
				ctx = logging.WithEntry(ctx, entry.WithField("user_id", userID.String()))
			}
			r = r.WithContext(ctx)
		}

		if ok || interceptor.isPublic(r) {
			next.ServeHTTP(w, r)
			return
		}

		if IsAPIPath(r.URL.Path) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}

		target := interceptor.loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusFound)
	})
}

func (interceptor *AuthInterceptor) isPublic(r *http.Request) bool {
	route := mux.CurrentRoute(r)
	if route == nil {
		return false
	}
	return interceptor.publicRoutes[route.GetName()]
}

// IsAPIPath reports whether path belongs to the JSON API rather than a page.
func IsAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// OptionalUserID returns the user id as a pointer, nil when anonymous.
func OptionalUserID(ctx context.Context) *uuid.UUID {
	if userID, ok := GetUserIDFromContext(ctx); ok {
		return &userID
	}
	return nil
}
