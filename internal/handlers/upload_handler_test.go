package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/morgabi/homehunt/internal/session"
)

// MockUploader is a mock implementation of storage.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, filename, contentType, data)
	return args.String(0), args.Error(1)
}

// newUploadRouter wires the handler onto a fresh test router.
func newUploadRouter(uploader *MockUploader) *gin.Engine {
	router, _ := newUploadRouterWithState(uploader)
	return router
}

func newUploadRouterWithState(uploader *MockUploader) (*gin.Engine, *session.State) {
	state := session.NewState()
	handler := NewUploadHandler(uploader, state)
	router := gin.New()
	router.POST("/uploads", handler.Upload)
	return router, state
}

// multipartRequest builds a request with one "file" part.
func multipartRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadHandler_Upload(t *testing.T) {
	t.Run("stores the file and returns its url", func(t *testing.T) {
		content := []byte("fake-png-bytes")
		mockUploader := new(MockUploader)
		mockUploader.On("Upload", mock.Anything, "ad.png", mock.Anything, content).
			Return("https://storage.example.com/storage/v1/object/public/apartment-images/abc.png", nil)

		w := httptest.NewRecorder()
		router, state := newUploadRouterWithState(mockUploader)
		router.ServeHTTP(w, multipartRequest(t, "ad.png", content))

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp UploadResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Contains(t, resp.URL, "apartment-images")
		assert.Equal(t, 1, state.Counter("uploads"))
	})

	t.Run("missing file part", func(t *testing.T) {
		mockUploader := new(MockUploader)

		req := httptest.NewRequest("POST", "/uploads", nil)
		w := httptest.NewRecorder()
		newUploadRouter(mockUploader).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUploader.AssertNotCalled(t, "Upload")
	})

	t.Run("all buckets failing is an upstream error", func(t *testing.T) {
		mockUploader := new(MockUploader)
		mockUploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("bucket public: 403"))

		w := httptest.NewRecorder()
		router, state := newUploadRouterWithState(mockUploader)
		router.ServeHTTP(w, multipartRequest(t, "ad.png", []byte("x")))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, 0, state.Counter("uploads"))
	})
}
