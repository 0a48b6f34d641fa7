package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/morgabi/homehunt/internal/errors"
	"github.com/morgabi/homehunt/internal/middleware"
	"github.com/morgabi/homehunt/internal/session"
	"github.com/morgabi/homehunt/internal/storage"
)

// MaxUploadBytes caps a single image upload.
const MaxUploadBytes = 10 << 20 // 10 MiB

// UploadHandler accepts image uploads and hands them to the storage
// uploader, which tries the configured buckets in order.
type UploadHandler struct {
	uploader storage.Uploader
	state    *session.State
}

// NewUploadHandler creates a new UploadHandler instance.
func NewUploadHandler(uploader storage.Uploader, state *session.State) *UploadHandler {
	return &UploadHandler{
		uploader: uploader,
		state:    state,
	}
}

// UploadResponse carries the public URL of the stored object.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload handles POST /api/v1/uploads. Expects a multipart form with a
// "file" part.
func (h *UploadHandler) Upload(c *gin.Context) {
	log := middleware.GetLogger(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file part", nil)
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		apierrors.BadRequest(c, "File too large", map[string]interface{}{
			"max_bytes": MaxUploadBytes,
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read upload", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes))
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read upload", err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.uploader.Upload(c.Request.Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		apierrors.BadGateway(c, "Upload failed on every bucket", err)
		return
	}

	if log != nil {
		log.Info("File uploaded", map[string]interface{}{
			"filename": fileHeader.Filename,
			"size":     fileHeader.Size,
			"url":      url,
		})
	}

	h.state.Increment("uploads")
	c.JSON(http.StatusCreated, UploadResponse{URL: url})
}
