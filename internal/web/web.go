// Package web renders the browser screens on top of the roaster controller.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-roaster/internal/analysis"
	"resume-roaster/internal/extract"
	"resume-roaster/internal/history"
	"resume-roaster/internal/roaster"
	"resume-roaster/internal/shared/metrics"
	"resume-roaster/internal/shared/server/middleware"
	"resume-roaster/internal/shared/telemetry"
	"resume-roaster/internal/shared/util"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	refreshSeconds = 2

	noticeExtractFailed = "Failed to read file. Please ensure it is a valid text or PDF file."
	noticeNoFile        = "Choose a file to upload first."
	noticeMissingInput  = "Both the job description and your resume are required."
	noticeUsername      = "Enter a username to continue."
)

// Handler serves the HTML screens.
type Handler struct {
	Ctrl     *roaster.Controller
	Provider string
	tmpl     *template.Template
}

type formData struct {
	JobDescription string
	ResumeText     string
	FileName       string
}

type page struct {
	User     string
	View     string
	Status   string
	Result   *analysis.Result
	Error    string
	Warning  string
	Notice   string
	Items    []history.Item
	Form     formData
	Disabled bool
	Refresh  int
	Accept   string
	Year     int
	Provider string
}

// New parses the embedded templates. provider is the display name in the footer.
func New(ctrl *roaster.Controller, provider string) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if provider == "" {
		provider = "Gemini"
	}
	return &Handler{Ctrl: ctrl, Provider: provider, tmpl: tmpl}, nil
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"chartTier":  ChartTier,
		"listTier":   ListTier,
		"inc":        func(i int) int { return i + 1 },
		"formatTime": formatTime,
	}).ParseFS(templatesFS, "templates/*.html")
}

// Register installs the templates on the engine and adds the page routes.
func (h *Handler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(h.tmpl)

	r.GET("/", h.index)
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
	r.POST("/roast", h.submit)
	r.POST("/upload", h.upload)
	r.POST("/reset", h.reset)
	r.POST("/nav/roast", h.navRoast)
	r.POST("/nav/history", h.navHistory)
	r.POST("/history/clear", h.clearHistory)
	r.POST("/history/:id", h.selectHistory)
}

// ChartTier colors the results score: red up to 50, yellow up to 80, green above.
func ChartTier(score int) string {
	switch {
	case score > 80:
		return "tier-green"
	case score > 50:
		return "tier-yellow"
	default:
		return "tier-red"
	}
}

// ListTier colors history rows: green from 80, yellow from 50.
func ListTier(score int) string {
	switch {
	case score >= 80:
		return "tier-green"
	case score >= 50:
		return "tier-yellow"
	default:
		return "tier-red"
	}
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format("Jan 2, 2006 • 3:04 PM")
}

func (h *Handler) render(c *gin.Context, status int, form formData, notice string) {
	snap := h.Ctrl.Snapshot()
	p := page{
		User:     snap.User,
		View:     string(snap.View),
		Status:   string(snap.Status),
		Result:   snap.Result,
		Error:    snap.Error,
		Warning:  snap.Warning,
		Notice:   notice,
		Form:     form,
		Accept:   strings.Join(extract.AcceptedExtensions, ","),
		Year:     time.Now().Year(),
		Provider: h.Provider,
	}
	if snap.Status == roaster.StatusAnalyzing {
		p.Disabled = true
		p.Refresh = refreshSeconds
	}
	if snap.User != "" && snap.View == roaster.ViewHistory {
		items, err := h.Ctrl.History(c.Request.Context())
		if err != nil {
			telemetry.Error("history.list_failed", map[string]any{
				"request_id": middleware.RequestIDFromContext(c),
				"user":       snap.User,
				"error":      err.Error(),
			})
		}
		p.Items = items
	}
	c.HTML(status, "layout", p)
}

func (h *Handler) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, formData{}, "")
}

func (h *Handler) login(c *gin.Context) {
	if _, err := h.Ctrl.Login(c.Request.Context(), c.PostForm("username")); err != nil {
		h.render(c, http.StatusBadRequest, formData{}, noticeUsername)
		return
	}
	h.redirectHome(c)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.Ctrl.Logout(c.Request.Context()); err != nil {
		telemetry.Error("session.logout_failed", map[string]any{"error": err.Error()})
	}
	h.redirectHome(c)
}

// submit requires a logged-in user; the login screen is rendered at "/".
func (h *Handler) submit(c *gin.Context) {
	if _, ok := h.Ctrl.CurrentUser(); !ok {
		h.redirectHome(c)
		return
	}
	form := formData{
		JobDescription: c.PostForm("jobDescription"),
		ResumeText:     c.PostForm("resumeText"),
	}
	ctx := c.Request.Context()
	_, err := h.Ctrl.Submit(ctx, form.ResumeText, form.JobDescription)
	switch {
	case errors.Is(err, roaster.ErrInvalidInput):
		h.render(c, http.StatusBadRequest, form, noticeMissingInput)
		return
	case err != nil && !errors.Is(err, roaster.ErrBusy):
		h.render(c, http.StatusInternalServerError, form, roaster.FailureMessage)
		return
	}
	h.redirectHome(c)
}

func (h *Handler) upload(c *gin.Context) {
	data, fileName, mimeType, err := extract.ReadUpload(c)
	form := formData{
		JobDescription: c.PostForm("jobDescription"),
		ResumeText:     c.PostForm("resumeText"),
	}
	if err != nil {
		h.render(c, http.StatusBadRequest, form, noticeNoFile)
		return
	}

	text, err := extract.FromBytes(c.Request.Context(), data, fileName, mimeType)
	if err != nil {
		metrics.IncExtractFailed()
		telemetry.Warn("extract.failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"file_name":  fileName,
			"error":      err.Error(),
		})
		h.render(c, http.StatusUnprocessableEntity, form, noticeExtractFailed)
		return
	}

	form.ResumeText = text
	form.FileName, _ = util.SanitizeFileName(fileName)
	h.render(c, http.StatusOK, form, "")
}

func (h *Handler) reset(c *gin.Context) {
	h.Ctrl.Reset()
	h.redirectHome(c)
}

func (h *Handler) navRoast(c *gin.Context) {
	h.Ctrl.NewRoast()
	h.redirectHome(c)
}

func (h *Handler) navHistory(c *gin.Context) {
	h.Ctrl.ShowHistory()
	h.redirectHome(c)
}

func (h *Handler) clearHistory(c *gin.Context) {
	if err := h.Ctrl.ClearHistory(c.Request.Context()); err != nil {
		telemetry.Error("history.clear_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err.Error(),
		})
	}
	h.redirectHome(c)
}

func (h *Handler) selectHistory(c *gin.Context) {
	if _, err := h.Ctrl.SelectHistory(c.Request.Context(), c.Param("id")); err != nil {
		telemetry.Warn("history.select_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"id":         c.Param("id"),
			"error":      err.Error(),
		})
	}
	h.redirectHome(c)
}
