package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pokeinfo/statehub/internal/service"
	"pokeinfo/statehub/pkg/response"
)

const ContextKeySessionID = "session_id"

// SessionAuth requires a valid "Authorization: Bearer <session token>" and
// stores the session ID in the context.
func SessionAuth(sessions service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		sessionID, err := sessions.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, service.ErrSessionNotReady) {
				response.ServiceUnavailable(c, "session store unavailable")
			} else {
				response.Unauthorized(c, "invalid or expired session")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeySessionID, sessionID)
		c.Next()
	}
}

// SessionID returns the session stored by SessionAuth.
func SessionID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextKeySessionID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
