package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/teamtask/internal/identity"
	"github.com/huangang/teamtask/pkg/logger"
	"github.com/huangang/teamtask/pkg/response"
)

const (
	ContextUserID = "user_id"

	// AuthChallenge is sent with every 401.
	AuthChallenge = `Bearer realm="api"`
)

// AuthRequired verifies the bearer token with auth and stores the caller's
// user id in the context.
func AuthRequired(auth identity.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Authentication credentials were not provided.")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "invalid authorization header format")
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("token rejected")
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", AuthChallenge)
	response.Abort(c, http.StatusUnauthorized, msg)
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
