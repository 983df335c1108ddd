package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/adri-yano/social-media-app/metrics"
	"github.com/adri-yano/social-media-app/pkg/apperr"
	"github.com/adri-yano/social-media-app/storage"
)

// multipartOverhead leaves room for boundaries and text fields on top of the
// file size limit.
const multipartOverhead = 1 << 20

// mediaUploader reads multipart files and stores them through the storage
// adapter.
type mediaUploader struct {
	store    storage.Uploader
	metrics  *metrics.Metrics
	maxBytes int64
}

// parseForm parses a multipart body no larger than the upload limit.
func (u *mediaUploader) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(u.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("file too large", map[string]string{
				"file": fmt.Sprintf("must be at most %d bytes", u.maxBytes),
			})
		}
		return apperr.Validation("invalid multipart form", nil)
	}
	return nil
}

// formFile returns the named file part, if the form carries one.
func formFile(r *http.Request, field string) (*multipart.FileHeader, bool) {
	if r.MultipartForm == nil {
		return nil, false
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return nil, false
	}
	return files[0], true
}

// save uploads fh under scope for owner and returns its public URL.
func (u *mediaUploader) save(ctx context.Context, scope storage.Scope, owner uuid.UUID, fh *multipart.FileHeader) (string, error) {
	if fh.Size > u.maxBytes {
		return "", apperr.Validation("file too large", map[string]string{
			"file": fmt.Sprintf("must be at most %d bytes", u.maxBytes),
		})
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("failed to open upload: %w", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("failed to read upload: %w", err))
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	url, err := u.store.Upload(ctx, storage.Object{
		Scope:       scope,
		OwnerID:     owner,
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	})
	u.metrics.RecordUpload(string(scope), err)
	if err != nil {
		return "", apperr.Upload(err)
	}
	return url, nil
}

// requireFile parses the form and stores its "file" part.
func (u *mediaUploader) requireFile(w http.ResponseWriter, r *http.Request, scope storage.Scope, owner uuid.UUID) (string, error) {
	if err := u.parseForm(w, r); err != nil {
		return "", err
	}
	fh, ok := formFile(r, "file")
	if !ok {
		return "", apperr.Validation("no file provided", map[string]string{"file": "is required"})
	}
	return u.save(r.Context(), scope, owner, fh)
}
