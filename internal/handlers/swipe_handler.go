package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/morgabi/homehunt/internal/errors"
	"github.com/morgabi/homehunt/internal/services"
	"github.com/morgabi/homehunt/internal/swipe"
)

// SwipeHandler drives swipe browsing sessions over HTTP. Each session is
// a server-side deck; the client reports gesture positions and renders
// the snapshots it gets back.
type SwipeHandler struct {
	service services.SwipeService
}

// NewSwipeHandler creates a new SwipeHandler instance.
func NewSwipeHandler(service services.SwipeService) *SwipeHandler {
	return &SwipeHandler{
		service: service,
	}
}

// StartSessionRequest is the body for POST /api/v1/swipe/sessions.
type StartSessionRequest struct {
	Mode string `json:"mode" binding:"required,oneof=regular scanned"`
}

// SessionResponse carries the session id and current deck state.
type SessionResponse struct {
	SessionID string         `json:"sessionId"`
	Snapshot  swipe.Snapshot `json:"snapshot"`
}

// GestureRequest reports a horizontal pointer position in pixels.
type GestureRequest struct {
	X *float64 `json:"x" binding:"required"`
}

// EndResponse carries the resolved gesture outcome and the deck state
// after it.
type EndResponse struct {
	Outcome  swipe.Outcome  `json:"outcome"`
	Snapshot swipe.Snapshot `json:"snapshot"`
}

// StartSession handles POST /api/v1/swipe/sessions.
func (h *SwipeHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid session request", nil)
		return
	}

	id, snap, err := h.service.StartSession(c.Request.Context(), swipe.Mode(req.Mode))
	if err != nil {
		if errors.Is(err, services.ErrUnknownSwipeMode) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to start swipe session", err)
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{SessionID: id, Snapshot: snap})
}

// Snapshot handles GET /api/v1/swipe/sessions/:id.
func (h *SwipeHandler) Snapshot(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Param("id"))
	if err != nil {
		h.respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{SessionID: c.Param("id"), Snapshot: snap})
}

// Begin handles POST /api/v1/swipe/sessions/:id/begin.
func (h *SwipeHandler) Begin(c *gin.Context) {
	var req GestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid gesture", nil)
		return
	}

	snap, err := h.service.Begin(c.Param("id"), *req.X)
	if err != nil {
		h.respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{SessionID: c.Param("id"), Snapshot: snap})
}

// Move handles POST /api/v1/swipe/sessions/:id/move.
func (h *SwipeHandler) Move(c *gin.Context) {
	var req GestureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid gesture", nil)
		return
	}

	snap, err := h.service.Move(c.Param("id"), *req.X)
	if err != nil {
		h.respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{SessionID: c.Param("id"), Snapshot: snap})
}

// End handles POST /api/v1/swipe/sessions/:id/end.
// Commits or snaps back the active gesture. In scanned mode a committed
// like promotes the candidate before the deck advances; a promotion
// failure keeps the card in place so the gesture can be retried.
func (h *SwipeHandler) End(c *gin.Context) {
	outcome, snap, err := h.service.End(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, swipe.ErrNoGesture) {
			apierrors.BadRequest(c, "No gesture in progress", nil)
			return
		}
		if errors.Is(err, swipe.ErrSessionNotFound) {
			apierrors.NotFound(c, "Swipe session not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to resolve swipe", err)
		return
	}

	c.JSON(http.StatusOK, EndResponse{Outcome: outcome, Snapshot: snap})
}

// Reset handles POST /api/v1/swipe/sessions/:id/reset.
func (h *SwipeHandler) Reset(c *gin.Context) {
	snap, err := h.service.Reset(c.Param("id"))
	if err != nil {
		h.respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{SessionID: c.Param("id"), Snapshot: snap})
}

// EndSession handles DELETE /api/v1/swipe/sessions/:id.
func (h *SwipeHandler) EndSession(c *gin.Context) {
	h.service.EndSession(c.Param("id"))
	c.Status(http.StatusNoContent)
}

// respondSessionError maps session-level errors to HTTP responses.
func (h *SwipeHandler) respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, swipe.ErrSessionNotFound):
		apierrors.NotFound(c, "Swipe session not found")
	case errors.Is(err, swipe.ErrExhausted):
		apierrors.BadRequest(c, "No cards left in this deck", nil)
	case errors.Is(err, swipe.ErrNoGesture):
		apierrors.BadRequest(c, "No gesture in progress", nil)
	default:
		apierrors.InternalServerError(c, "Swipe session error", err)
	}
}
