package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"martapp/kiosk/pkg/response"
)

// SessionHeader carries the admin session ID issued by the login endpoint.
const SessionHeader = "X-Kiosk-Session"

// SessionValidator checks whether a session ID is currently valid.
type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (bool, error)
}

// SessionAuth guards admin routes behind the kiosk login gate.
func SessionAuth(validator SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			response.Unauthorized(c, "missing session")
			c.Abort()
			return
		}

		ok, err := validator.Validate(c.Request.Context(), sessionID)
		if err != nil {
			response.InternalError(c, "session check failed")
			c.Abort()
			return
		}
		if !ok {
			response.Unauthorized(c, "invalid or expired session")
			c.Abort()
			return
		}
		c.Next()
	}
}
