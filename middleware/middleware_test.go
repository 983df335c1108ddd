package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adri-yano/social-media-app/logging"
	"github.com/adri-yano/social-media-app/metrics"
)

func TestLoggingMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()

	var sawEntry bool
	r := mux.NewRouter()
	r.HandleFunc("/api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, sawEntry = logging.EntryFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	r.Use(LoggingMiddleware(logger))

	req := httptest.NewRequest(http.MethodGet, "/api/posts/1", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.True(t, sawEntry)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "/api/posts/1", entry.Data["path"])
}

func TestLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	logger, _ := test.NewNullLogger()
	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := metrics.New()
	r := mux.NewRouter()
	r.HandleFunc("/api/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Use(MetricsMiddleware(m))

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts/"+string(rune('a'+i)), nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `social_media_http_requests_total{method="GET",path="/api/posts/{id}",status="404"} 3`)

	n, err := testutil.GatherAndCount(m.Registry, "social_media_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTimeoutMiddleware(t *testing.T) {
	h := TimeoutMiddleware(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(rec.Body.Bytes()), &body))
	assert.Equal(t, "request timed out", body["error"])
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := NewCORSMiddleware([]string{"https://app.example"}).Handler(next)

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		status      int
		allowOrigin string
	}{
		{"allowed simple", http.MethodGet, "https://app.example", false, http.StatusOK, "https://app.example"},
		{"other origin", http.MethodGet, "https://evil.example", false, http.StatusOK, ""},
		{"allowed preflight", http.MethodOptions, "https://app.example", true, http.StatusNoContent, "https://app.example"},
		{"rejected preflight", http.MethodOptions, "https://evil.example", true, http.StatusForbidden, ""},
		{"suffix is not a match", http.MethodGet, "https://evil.app.example", false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/posts", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.allowOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.allowOrigin != "" {
				assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
