package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-roaster/internal/extract"
	"resume-roaster/internal/roaster"
	"resume-roaster/internal/services/health"
	"resume-roaster/internal/shared/config"
	"resume-roaster/internal/shared/metrics"
	"resume-roaster/internal/shared/server/middleware"
	"resume-roaster/internal/shared/server/respond"
	"resume-roaster/internal/web"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config         config.Config
	Health         *health.Service
	RoasterHandler *roaster.Handler
	ExtractHandler *extract.Handler
	WebHandler     *web.Handler
	CurrentUser    middleware.CurrentUserFunc
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Identity(deps.CurrentUser),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		st := deps.Health.Check(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	})
	api.GET("/metrics", metrics.Handler())

	if deps.ExtractHandler != nil {
		deps.ExtractHandler.RegisterRoutes(api)
	}
	if deps.RoasterHandler != nil {
		deps.RoasterHandler.RegisterRoutes(api)
	}
	if deps.WebHandler != nil {
		deps.WebHandler.Register(r)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
