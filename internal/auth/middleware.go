package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie holding the opaque session id.
const SessionCookieName = "session_id"

const contextKeyUserID = "user_id"

// UserIDFromContext returns the current user ID set by RequireSession. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireSession guards the admin route group. Requests without a live session
// are redirected to /login before the handler runs; authenticated requests get
// the user id attached to the context and their session TTL renewed.
func RequireSession(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		userID, err := sessions.GetUserID(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				c.Redirect(http.StatusSeeOther, "/login")
				c.Abort()
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		_ = sessions.Renew(c.Request.Context(), sessionID)
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}
