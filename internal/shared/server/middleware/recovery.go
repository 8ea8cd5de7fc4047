package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-roaster/internal/shared/server/respond"
	"resume-roaster/internal/shared/telemetry"
)

const apiPrefix = "/api/"

// Recovery turns a handler panic into a 500. API callers get the error
// envelope; browser pages get a plain message.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"user":       UsernameFromContext(c),
			})
			if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
				respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
				return
			}
			c.Abort()
			c.String(http.StatusInternalServerError, "Something went wrong. Reload the page to try again.")
		}()
		c.Next()
	}
}
