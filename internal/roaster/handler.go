package roaster

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-roaster/internal/history"
	"resume-roaster/internal/session"
	"resume-roaster/internal/shared/server/middleware"
	"resume-roaster/internal/shared/server/respond"
	"resume-roaster/internal/shared/telemetry"
)

// Handler exposes the controller as a JSON API.
type Handler struct {
	Ctrl *Controller
}

// NewHandler constructs a Handler.
func NewHandler(ctrl *Controller) *Handler {
	return &Handler{Ctrl: ctrl}
}

// RegisterRoutes attaches session, roast, state and history routes to the group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/session", h.getSession)
	rg.POST("/session", h.login)
	rg.DELETE("/session", h.logout)

	rg.POST("/roasts", h.submit)

	rg.GET("/state", h.getState)
	rg.POST("/state/reset", h.reset)
	rg.POST("/state/view", h.setView)

	rg.GET("/history", h.listHistory)
	rg.DELETE("/history", h.clearHistory)
	rg.POST("/history/:id/select", h.selectHistory)
}

type loginRequest struct {
	Username string `json:"username"`
}

type submitRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

type viewRequest struct {
	View string `json:"view"`
}

func (h *Handler) getSession(c *gin.Context) {
	user, ok := h.Ctrl.CurrentUser()
	respond.OK(c, gin.H{"username": user, "loggedIn": ok})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	name, err := h.Ctrl.Login(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, session.ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "username is required", []map[string]string{
				{"field": "username", "issue": "required"},
			})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log in", nil)
		return
	}
	respond.OK(c, gin.H{"username": name, "loggedIn": true})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Ctrl.Logout(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to log out", nil)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Ctrl.Submit(ctx, req.ResumeText, req.JobDescription); err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "resumeText and jobDescription are required", []map[string]string{
				{"field": "resumeText", "issue": "required"},
				{"field": "jobDescription", "issue": "required"},
			})
		case errors.Is(err, ErrBusy):
			respond.Error(c, http.StatusConflict, "busy", "an analysis is already in progress", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start analysis", nil)
		}
		return
	}
	c.Set("statusTransition", "idle->analyzing")
	respond.JSON(c, http.StatusAccepted, h.Ctrl.Snapshot())
}

func (h *Handler) getState(c *gin.Context) {
	respond.OK(c, h.Ctrl.Snapshot())
}

func (h *Handler) reset(c *gin.Context) {
	h.Ctrl.Reset()
	respond.OK(c, h.Ctrl.Snapshot())
}

func (h *Handler) setView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	view, err := ParseView(req.View)
	if err == nil {
		err = h.Ctrl.SetView(view)
	}
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "view must be roast or history", []map[string]string{
			{"field": "view", "issue": "invalid"},
		})
		return
	}
	respond.OK(c, h.Ctrl.Snapshot())
}

func (h *Handler) listHistory(c *gin.Context) {
	items, err := h.Ctrl.History(c.Request.Context())
	if err != nil {
		telemetry.Error("history.list_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load history", nil)
		return
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) clearHistory(c *gin.Context) {
	if err := h.Ctrl.ClearHistory(c.Request.Context()); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear history", nil)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) selectHistory(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Ctrl.SelectHistory(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotLoggedIn):
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "log in to open history", nil)
		case errors.Is(err, history.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "history item not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open history item", nil)
		}
		return
	}
	respond.OK(c, h.Ctrl.Snapshot())
}
