// Package storage uploads media to Supabase Storage and returns public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUploadFailed wraps every failure to store an object.
var ErrUploadFailed = errors.New("upload failed")

// Scope is the top-level folder an object is stored under.
type Scope string

const (
	ScopePosts   Scope = "posts"
	ScopeAvatars Scope = "avatars"
)

// Uploader stores media and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// Object is a single upload.
type Object struct {
	Scope       Scope
	OwnerID     uuid.UUID
	Filename    string
	ContentType string
	Data        []byte
}

type Config struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	Timeout    time.Duration
}

// SupabaseStore talks to the Supabase Storage REST API.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
	now        func() time.Time
}

func NewSupabaseStore(cfg Config) *SupabaseStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SupabaseStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Upload writes obj under {scope}/{owner}-{unix millis}.{ext} and returns
// the object's public URL.
func (s *SupabaseStore) Upload(ctx context.Context, obj Object) (string, error) {
	if len(obj.Data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrUploadFailed)
	}

	objectPath := ObjectPath(obj.Scope, obj.OwnerID, obj.Filename, s.now())
	reqURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, objectPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(obj.Data))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrUploadFailed, err)
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: storage returned %d: %s", ErrUploadFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return s.PublicURL(objectPath), nil
}

// PublicURL returns the public URL for an object path.
func (s *SupabaseStore) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

// ObjectPath namespaces an upload by owner and time so repeated uploads do
// not collide.
func ObjectPath(scope Scope, ownerID uuid.UUID, filename string, at time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s-%d.%s", scope, ownerID, at.UnixMilli(), ext)
}
