package web

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-roaster/internal/analysis"
	"resume-roaster/internal/history"
	"resume-roaster/internal/roaster"
	"resume-roaster/internal/session"
	"resume-roaster/internal/shared/storage/kv"
)

type stubAnalyzer struct {
	result analysis.Result
	err    error
}

func (s stubAnalyzer) Analyze(context.Context, string, string) (analysis.Result, error) {
	return s.result, s.err
}

func testResult(score int, keywords ...string) analysis.Result {
	return analysis.Result{
		MatchScore:      score,
		MissingKeywords: keywords,
		CritiquePoints: []analysis.CritiquePoint{
			{Original: "Did stuff", Feedback: "Vague", Rewritten: "Shipped X"},
			{Original: "Team player", Feedback: "Cliche", Rewritten: "Led 4 engineers"},
			{Original: "Hard worker", Feedback: "Unprovable", Rewritten: "Cut latency 40%"},
		},
		RoastComment: "This resume reads like a terms of service page.",
	}
}

func newTestServer(t *testing.T, analyzer analysis.Analyzer) (*gin.Engine, *roaster.Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := kv.NewMemoryStore()
	sess, err := session.Load(context.Background(), store)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctrl := roaster.New(analyzer, history.NewStore(store), sess, roaster.Options{})
	h, err := New(ctrl, "")
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	r := gin.New()
	h.Register(r)
	return r, ctrl
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func postForm(r http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, ctrl *roaster.Controller, name string) {
	t.Helper()
	if _, err := ctrl.Login(context.Background(), name); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func waitUntil(t *testing.T, ctrl *roaster.Controller, want roaster.Status) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for ctrl.Snapshot().Status != want {
		if time.Now().After(deadline) {
			t.Fatalf("status never reached %s", want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestIndexShowsLoginWhenLoggedOut(t *testing.T) {
	r, _ := newTestServer(t, stubAnalyzer{})

	w := get(r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Identify Yourself") {
		t.Fatalf("expected login screen, got %s", body)
	}
	if strings.Contains(body, "Logged in as") {
		t.Fatalf("header nav should be hidden when logged out")
	}
}

func TestLoginRedirectsToForm(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{})

	w := postForm(r, "/login", url.Values{"username": {"alice"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if user, _ := ctrl.CurrentUser(); user != "alice" {
		t.Fatalf("expected alice, got %q", user)
	}

	body := get(r, "/").Body.String()
	for _, want := range []string{"Logged in as alice", "Prepare for the Roast", ".txt,.md,.json,.pdf,.docx"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in idle screen", want)
		}
	}
}

func TestBlankUsernameStaysOnLogin(t *testing.T) {
	r, _ := newTestServer(t, stubAnalyzer{})

	w := postForm(r, "/login", url.Values{"username": {"   "}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), noticeUsername) {
		t.Fatalf("expected username notice")
	}
}

func TestSubmitRendersResults(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{result: testResult(85, "Terraform")})
	login(t, ctrl, "alice")

	w := postForm(r, "/roast", url.Values{"jobDescription": {"SRE"}, "resumeText": {"Ops person"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", w.Code, w.Body.String())
	}
	waitUntil(t, ctrl, roaster.StatusResults)

	body := get(r, "/").Body.String()
	for _, want := range []string{"85%", "score tier-green", "Terraform", "Fix #1", "Fix #3", "Roast Another Resume"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in results screen", want)
		}
	}
}

func TestSubmitWhileLoggedOutReturnsToLogin(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{result: testResult(85, "Terraform")})

	w := postForm(r, "/roast", url.Values{"jobDescription": {"SRE"}, "resumeText": {"Ops person"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if got := ctrl.Snapshot().Status; got != roaster.StatusIdle {
		t.Fatalf("expected no analysis to start, got %s", got)
	}
	if !strings.Contains(get(r, "/").Body.String(), "Identify Yourself") {
		t.Fatalf("expected login screen")
	}
}

func TestResultsWithoutKeywordsShowsNotice(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{result: testResult(40)})
	login(t, ctrl, "alice")
	done, err := ctrl.Submit(context.Background(), "resume", "job")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done

	body := get(r, "/").Body.String()
	if !strings.Contains(body, "No major keywords missing! Good job.") {
		t.Fatalf("expected empty keywords notice")
	}
	if !strings.Contains(body, "score tier-red") {
		t.Fatalf("expected red tier for 40")
	}
}

func TestSubmitBlankInputKeepsForm(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{})
	login(t, ctrl, "alice")

	w := postForm(r, "/roast", url.Values{"jobDescription": {"Staff Engineer"}, "resumeText": {"  "}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Staff Engineer") {
		t.Fatalf("expected job description to be preserved")
	}
	if ctrl.Snapshot().Status != roaster.StatusIdle {
		t.Fatalf("expected idle")
	}
}

func TestErrorScreenAndTryAgain(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{err: analysis.ErrConfiguration})
	login(t, ctrl, "alice")
	done, err := ctrl.Submit(context.Background(), "resume", "job")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done

	body := get(r, "/").Body.String()
	if !strings.Contains(body, "Analysis Failed") || !strings.Contains(body, roaster.FailureMessage) {
		t.Fatalf("expected error screen, got %s", body)
	}

	postForm(r, "/reset", nil)
	if ctrl.Snapshot().Status != roaster.StatusIdle {
		t.Fatalf("expected idle after try again")
	}
}

func TestUploadFillsResume(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{})
	login(t, ctrl, "alice")

	w := postUpload(t, r, "cv.txt", []byte("Ten years of Go"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Ten years of Go") || !strings.Contains(body, "cv.txt") {
		t.Fatalf("expected extracted text and file name, got %s", body)
	}
	if !strings.Contains(body, "Platform Engineer") {
		t.Fatalf("expected job description to survive upload")
	}
}

func TestUploadFailureShowsNotice(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{})
	login(t, ctrl, "alice")

	w := postUpload(t, r, "broken.pdf", []byte("%PDF-1.4 not really"))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, noticeExtractFailed) {
		t.Fatalf("expected extraction notice")
	}
	if strings.Contains(body, "broken.pdf") {
		t.Fatalf("file name should be cleared on failure")
	}
}

func TestHistoryScreenListsAndClears(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{result: testResult(79)})
	login(t, ctrl, "alice")

	postForm(r, "/nav/history", nil)
	if body := get(r, "/").Body.String(); !strings.Contains(body, "No roasts recorded yet.") {
		t.Fatalf("expected empty history notice")
	}

	done, err := ctrl.Submit(context.Background(), "resume", "Backend Engineer at Acme")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done
	ctrl.ShowHistory()

	body := get(r, "/").Body.String()
	for _, want := range []string{"Backend Engineer at Acme", "79%", "score tier-yellow", "CLEAR ALL", "Are you sure you want to delete all history?"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in history screen", want)
		}
	}

	postForm(r, "/history/clear", nil)
	if items, _ := ctrl.History(context.Background()); len(items) != 0 {
		t.Fatalf("expected history cleared, got %d", len(items))
	}
}

func TestSelectHistoryOpensResults(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{result: testResult(91)})
	login(t, ctrl, "alice")
	done, err := ctrl.Submit(context.Background(), "resume", "job")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	<-done
	ctrl.Reset()
	items, err := ctrl.History(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("expected one item, got %v %v", items, err)
	}

	postForm(r, "/history/"+items[0].ID, nil)
	snap := ctrl.Snapshot()
	if snap.Status != roaster.StatusResults || snap.View != roaster.ViewRoast {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	r, ctrl := newTestServer(t, stubAnalyzer{})
	login(t, ctrl, "alice")

	postForm(r, "/logout", nil)
	if !strings.Contains(get(r, "/").Body.String(), "Identify Yourself") {
		t.Fatalf("expected login screen after logout")
	}
}

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		score      int
		chart      string
		historyRow string
	}{
		{score: 50, chart: "tier-red", historyRow: "tier-yellow"},
		{score: 51, chart: "tier-yellow", historyRow: "tier-yellow"},
		{score: 80, chart: "tier-yellow", historyRow: "tier-green"},
		{score: 81, chart: "tier-green", historyRow: "tier-green"},
		{score: 49, chart: "tier-red", historyRow: "tier-red"},
	}
	for _, tt := range tests {
		if got := ChartTier(tt.score); got != tt.chart {
			t.Fatalf("ChartTier(%d) = %s, want %s", tt.score, got, tt.chart)
		}
		if got := ListTier(tt.score); got != tt.historyRow {
			t.Fatalf("ListTier(%d) = %s, want %s", tt.score, got, tt.historyRow)
		}
	}
}

func postUpload(t *testing.T, r http.Handler, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("jobDescription", "Platform Engineer"); err != nil {
		t.Fatalf("write field: %v", err)
	}
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
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
