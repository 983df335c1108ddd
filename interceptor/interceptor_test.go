package interceptor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

type fakeSessions map[string]uuid.UUID

func (f fakeSessions) Read(_ context.Context, token string) (uuid.UUID, bool) {
	id, ok := f[token]
	return id, ok
}

func headerToken(r *http.Request) string { return r.Header.Get("X-Test-Token") }

func newTestRouter(sessions fakeSessions) *mux.Router {
	gate := NewAuthInterceptor(sessions, headerToken, []string{"posts.list"})

	whoami := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := GetUserIDFromContext(r.Context()); ok {
			_, _ = w.Write([]byte(id.String()))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	})

	r := mux.NewRouter()
	r.Handle("/api/posts", whoami).Methods(http.MethodGet).Name("posts.list")
	r.Handle("/api/posts", whoami).Methods(http.MethodPost).Name("posts.create")
	r.Handle("/settings", whoami).Methods(http.MethodGet).Name("page.settings")
	r.Use(gate.Middleware)
	return r
}

func TestAuthInterceptor(t *testing.T) {
	alice := uuid.New()
	router := newTestRouter(fakeSessions{"good": alice})

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		status   int
		body     string
		location string
	}{
		{"public anonymous", http.MethodGet, "/api/posts", "", http.StatusOK, "anonymous", ""},
		{"public authenticated", http.MethodGet, "/api/posts", "good", http.StatusOK, alice.String(), ""},
		{"private anonymous api", http.MethodPost, "/api/posts", "", http.StatusUnauthorized, `{"error":"unauthorized"}` + "\n", ""},
		{"private bad token", http.MethodPost, "/api/posts", "forged", http.StatusUnauthorized, `{"error":"unauthorized"}` + "\n", ""},
		{"private authenticated", http.MethodPost, "/api/posts", "good", http.StatusOK, alice.String(), ""},
		{"page redirect", http.MethodGet, "/settings?tab=profile", "", http.StatusFound, "", "/login?next=%2Fsettings%3Ftab%3Dprofile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("X-Test-Token", tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}
}

func TestOptionalUserID(t *testing.T) {
	assert.Nil(t, OptionalUserID(context.Background()))

	id := uuid.New()
	got := OptionalUserID(WithUserID(context.Background(), id))
	if assert.NotNil(t, got) {
		assert.Equal(t, id, *got)
	}
}

func TestIsAPIPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api", true},
		{"/api/posts", true},
		{"/apiary", false},
		{"/settings", false},
		{"/", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAPIPath(tt.path))
		})
	}
}
