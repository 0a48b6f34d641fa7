package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/morgabi/homehunt/internal/models"
	"github.com/morgabi/homehunt/internal/session"
)

// SessionHandler exposes the centralized local session state: device id,
// active theme, and the theme cycle.
type SessionHandler struct {
	state *session.State
}

// NewSessionHandler creates a new SessionHandler instance.
func NewSessionHandler(state *session.State) *SessionHandler {
	return &SessionHandler{
		state: state,
	}
}

// SessionStateResponse describes the current local session state.
type SessionStateResponse struct {
	DeviceID string             `json:"deviceId"`
	Theme    models.ThemeConfig `json:"theme"`
	Counters map[string]int     `json:"counters"`
}

// ThemeListResponse lists every theme in cycle order.
type ThemeListResponse struct {
	Themes []models.ThemeConfig `json:"themes"`
}

// Get handles GET /api/v1/session.
func (h *SessionHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, SessionStateResponse{
		DeviceID: h.state.DeviceID(),
		Theme:    models.ThemeByID(h.state.Theme()),
		Counters: h.state.Counters(),
	})
}

// CycleTheme handles POST /api/v1/session/theme/next.
// Advances to the next theme and returns the new state.
func (h *SessionHandler) CycleTheme(c *gin.Context) {
	theme := h.state.CycleTheme()
	c.JSON(http.StatusOK, SessionStateResponse{
		DeviceID: h.state.DeviceID(),
		Theme:    theme,
		Counters: h.state.Counters(),
	})
}

// ListThemes handles GET /api/v1/themes.
func (h *SessionHandler) ListThemes(c *gin.Context) {
	c.JSON(http.StatusOK, ThemeListResponse{Themes: models.AllThemes()})
}

// Reset handles POST /api/v1/session/reset.
// Clears counters and returns the theme to the default. The device id
// is stable across resets.
func (h *SessionHandler) Reset(c *gin.Context) {
	h.state.Reset()
	c.JSON(http.StatusOK, SessionStateResponse{
		DeviceID: h.state.DeviceID(),
		Theme:    models.ThemeByID(h.state.Theme()),
		Counters: h.state.Counters(),
	})
}
