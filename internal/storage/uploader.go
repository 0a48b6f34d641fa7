// Package storage uploads listing images to the hosted object store.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/morgabi/homehunt/internal/logger"
)

// Uploader stores binary blobs and returns their public URL.
type Uploader interface {
	// Upload writes data under a namespaced unique path and returns the
	// public URL. It probes the configured buckets in order and stops at
	// the first success; if every bucket fails the last error surfaces.
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type httpUploader struct {
	baseURL string
	apiKey  string
	buckets []string
	client  *http.Client
	log     *logger.Logger
}

// NewUploader creates an Uploader that probes buckets in the given order.
func NewUploader(baseURL, apiKey string, buckets []string, log *logger.Logger) Uploader {
	return &httpUploader{
		baseURL: baseURL,
		apiKey:  apiKey,
		buckets: buckets,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

func (u *httpUploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if u.baseURL == "" {
		return "", fmt.Errorf("storage base URL not configured")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}

	// Unique object name keeps repeated uploads of the same file apart.
	object := uuid.New().String() + path.Ext(filename)

	var lastErr error
	for _, bucket := range u.buckets {
		url, err := u.uploadToBucket(ctx, bucket, object, contentType, data)
		if err == nil {
			return url, nil
		}
		lastErr = err
		u.log.Warn("Bucket upload failed, trying next", map[string]interface{}{
			"bucket": bucket,
			"object": object,
			"error":  err.Error(),
		})
	}

	return "", fmt.Errorf("upload failed on every bucket: %w", lastErr)
}

func (u *httpUploader) uploadToBucket(ctx context.Context, bucket, object, contentType string, data []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", u.baseURL, bucket, object)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload to bucket %s failed: %w", bucket, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bucket %s returned status %d", bucket, resp.StatusCode)
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", u.baseURL, bucket, object), nil
}
