package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-roaster/internal/shared/telemetry"
)

func newPanicRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/api/v1/panic", func(c *gin.Context) { panic("boom") })
	router.GET("/", func(c *gin.Context) { panic("boom") })
	return router
}

func TestRecoveryReturnsEnvelopeForAPI(t *testing.T) {
	resp := httptest.NewRecorder()
	newPanicRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"code":"internal_error"`) {
		t.Fatalf("expected error envelope, got %s", resp.Body.String())
	}
}

func TestRecoveryReturnsPlainTextForPages(t *testing.T) {
	resp := httptest.NewRecorder()
	newPanicRouter(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "internal_error") {
		t.Fatalf("page should not get the JSON envelope")
	}
}
