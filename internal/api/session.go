package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "hs_session"
	sessionHeader = "X-Session-ID"
	sessionKey    = "session_id"
	sessionMaxAge = 7 * 24 * 60 * 60
)

// sessionMiddleware binds every request to a browser session. Script clients
// may pass the id in a header instead of the cookie.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := firstNonEmpty(c.GetHeader(sessionHeader), cookieValue(c))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, sessionMaxAge, "/", "", false, true)
		c.Header(sessionHeader, id)
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}

func cookieValue(c *gin.Context) string {
	value, err := c.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
