package storage

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morgabi/homehunt/internal/logger"
)

const storageBase = "https://store.example"

func newMockedUploader(t *testing.T, buckets ...string) Uploader {
	t.Helper()
	u := NewUploader(storageBase, "test-key", buckets, logger.New("test"))
	httpmock.ActivateNonDefault(u.(*httpUploader).client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return u
}

func bucketMatcher(bucket string) string {
	return `=~^` + storageBase + `/storage/v1/object/` + bucket + `/.+$`
}

func TestUploader_FirstBucketSucceeds(t *testing.T) {
	u := newMockedUploader(t, "apartment-images", "images")

	httpmock.RegisterResponder(http.MethodPost, bucketMatcher("apartment-images"),
		httpmock.NewStringResponder(http.StatusOK, `{}`))

	url, err := u.Upload(context.Background(), "kitchen.jpg", "image/jpeg", []byte("jpegdata"))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, storageBase+"/storage/v1/object/public/apartment-images/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	// The second bucket was never probed.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestUploader_FallsBackToNextBucket(t *testing.T) {
	u := newMockedUploader(t, "apartment-images", "images")

	httpmock.RegisterResponder(http.MethodPost, bucketMatcher("apartment-images"),
		httpmock.NewStringResponder(http.StatusNotFound, `{"error":"bucket not found"}`))
	httpmock.RegisterResponder(http.MethodPost, bucketMatcher("images"),
		httpmock.NewStringResponder(http.StatusOK, `{}`))

	url, err := u.Upload(context.Background(), "photo.png", "image/png", []byte("pngdata"))

	require.NoError(t, err)
	assert.Contains(t, url, "/public/images/")
}

func TestUploader_AllBucketsFail(t *testing.T) {
	u := newMockedUploader(t, "apartment-images", "images")

	httpmock.RegisterResponder(http.MethodPost, bucketMatcher("apartment-images"),
		httpmock.NewStringResponder(http.StatusNotFound, `{}`))
	httpmock.RegisterResponder(http.MethodPost, bucketMatcher("images"),
		httpmock.NewStringResponder(http.StatusForbidden, `{}`))

	_, err := u.Upload(context.Background(), "photo.jpg", "image/jpeg", []byte("data"))

	require.Error(t, err)
	// The last bucket's error is the one surfaced.
	assert.Contains(t, err.Error(), "images")
	assert.Contains(t, err.Error(), "403")
}

func TestUploader_EmptyPayloadRejected(t *testing.T) {
	u := newMockedUploader(t, "apartment-images")

	_, err := u.Upload(context.Background(), "photo.jpg", "image/jpeg", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestUploader_MissingBaseURL(t *testing.T) {
	u := NewUploader("", "", []string{"images"}, logger.New("test"))

	_, err := u.Upload(context.Background(), "photo.jpg", "image/jpeg", []byte("data"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
