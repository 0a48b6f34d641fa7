package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/morgabi/homehunt/internal/auth"
	apierrors "github.com/morgabi/homehunt/internal/errors"
	"github.com/morgabi/homehunt/internal/middleware"
)

// AuthHandler exchanges the shared password for a session token and
// revokes tokens on logout.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// LoginRequest is the body for POST /api/v1/auth/login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	log := middleware.GetLogger(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Password is required", nil)
		return
	}

	token, err := h.service.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadPassword) {
			apierrors.Unauthorized(c, "Wrong password")
			return
		}
		apierrors.InternalServerError(c, "Login failed", err)
		return
	}

	if log != nil {
		log.Info("Session opened", map[string]interface{}{
			"ip": c.ClientIP(),
		})
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token})
}

// Logout handles POST /api/v1/auth/logout.
// Revokes the bearer token from the Authorization header; unknown
// tokens are a no-op.
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(header, prefix) {
		h.service.Logout(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
	}
	c.Status(http.StatusNoContent)
}
