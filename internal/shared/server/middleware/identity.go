package middleware

import (
	"github.com/gin-gonic/gin"
)

const usernameKey = "username"

// CurrentUserFunc reports the device's logged-in username.
type CurrentUserFunc func() (string, bool)

// Identity copies the current username into the request context for handlers and logs.
// There is no credential check: the username is a local label.
func Identity(current CurrentUserFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if current != nil {
			if user, ok := current(); ok {
				c.Set(usernameKey, user)
			}
		}
		c.Next()
	}
}

// UsernameFromContext fetches the username set by the Identity middleware.
func UsernameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(usernameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}
