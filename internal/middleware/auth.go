package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenValidator checks a capability token issued at login.
type TokenValidator interface {
	Validate(token string) error
}

// Auth creates a middleware that gates routes behind a bearer capability
// token. Requests without a valid token are rejected with 401 before the
// handler runs.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "Missing bearer token")
			return
		}

		if err := validator.Validate(token); err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header.
// Returns an empty string if the header is missing or malformed.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// unauthorized writes the standard error envelope without importing the
// errors package, which would create an import cycle.
func unauthorized(c *gin.Context, message string) {
	log := GetLogger(c)
	requestID := GetRequestID(c)

	if log != nil {
		log.Warn("Unauthorized", map[string]interface{}{
			"message":    message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		})
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":       "UNAUTHORIZED",
			"message":    message,
			"request_id": requestID,
		},
	})
}
