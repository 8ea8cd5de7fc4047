package extract

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newUploadRequest(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &Handler{}
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestExtractHandlerReturnsText(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, newUploadRequest(t, "resume.txt", []byte("Go developer")))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Text     string `json:"text"`
		FileName string `json:"fileName"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Text != "Go developer" || resp.FileName != "resume.txt" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestExtractHandlerCorruptPDF(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, newUploadRequest(t, "resume.pdf", []byte("not a pdf")))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"code":"extraction_error"`)) {
		t.Fatalf("expected extraction_error code, got %s", w.Body.String())
	}
}

func TestExtractHandlerMissingFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", nil)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
