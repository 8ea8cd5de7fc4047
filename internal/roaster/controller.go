// Package roaster holds the application controller: the analysis state
// machine, the view selector and the wiring to history and session.
package roaster

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"resume-roaster/internal/analysis"
	"resume-roaster/internal/history"
	"resume-roaster/internal/session"
	"resume-roaster/internal/shared/metrics"
	"resume-roaster/internal/shared/telemetry"
)

const defaultAnalysisTimeout = 120 * time.Second

// Controller is the single per-process orchestrator. All fields behind mu;
// the analysis call and history save run without holding it.
type Controller struct {
	analyzer analysis.Analyzer
	history  *history.Store
	session  *session.Session
	timeout  time.Duration

	mu         sync.Mutex
	status     Status
	view       View
	result     *analysis.Result
	errMsg     string
	warning    string
	generation uint64
}

// Options tunes the controller.
type Options struct {
	AnalysisTimeout time.Duration
}

// New builds a controller in Idle with the Roast view selected.
func New(analyzer analysis.Analyzer, hist *history.Store, sess *session.Session, opts Options) *Controller {
	timeout := opts.AnalysisTimeout
	if timeout <= 0 {
		timeout = defaultAnalysisTimeout
	}
	return &Controller{
		analyzer: analyzer,
		history:  hist,
		session:  sess,
		timeout:  timeout,
		status:   StatusIdle,
		view:     ViewRoast,
	}
}

// Submit starts an analysis in the background. The returned channel is closed
// once the run has reached its terminal state and any history save finished.
func (c *Controller) Submit(ctx context.Context, resumeText, jobDescription string) (<-chan struct{}, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobDescription) == "" {
		return nil, ErrInvalidInput
	}

	c.mu.Lock()
	if c.status == StatusAnalyzing {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.generation++
	gen := c.generation
	c.status = StatusAnalyzing
	c.result = nil
	c.errMsg = ""
	c.warning = ""
	c.mu.Unlock()

	user, _ := c.session.Current()
	metrics.IncRoastStarted()
	telemetry.Info("roast.started", map[string]any{
		"request_id":        telemetry.RequestID(ctx),
		"user":              user,
		"generation":        gen,
		"status_transition": "idle->analyzing",
	})

	done := make(chan struct{})
	go c.run(context.WithoutCancel(ctx), gen, user, resumeText, jobDescription, done)
	return done, nil
}

func (c *Controller) run(ctx context.Context, gen uint64, user, resumeText, jobDescription string, done chan<- struct{}) {
	defer close(done)
	analyzed := false
	defer func() {
		if r := recover(); r != nil {
			if analyzed {
				c.saveFailed(ctx, gen, user, fmt.Errorf("panic: %v", r))
				return
			}
			c.fail(ctx, gen, user, fmt.Errorf("panic: %v", r))
		}
	}()

	started := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	result, err := c.analyzer.Analyze(callCtx, resumeText, jobDescription)
	cancel()
	metrics.ObserveRoastDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)
	if err != nil {
		c.fail(ctx, gen, user, err)
		return
	}
	metrics.IncRoastCompleted()
	analyzed = true

	c.mu.Lock()
	current := gen == c.generation
	if current {
		held := result.Clone()
		c.status = StatusResults
		c.result = &held
	}
	c.mu.Unlock()

	telemetry.Info("roast.completed", map[string]any{
		"request_id":        telemetry.RequestID(ctx),
		"user":              user,
		"generation":        gen,
		"match_score":       result.MatchScore,
		"superseded":        !current,
		"status_transition": "analyzing->results",
	})

	if user == "" {
		return
	}
	if _, err := c.history.Save(ctx, user, jobDescription, result); err != nil {
		c.saveFailed(ctx, gen, user, err)
	}
}

// saveFailed keeps the displayed result and flags it with SaveWarning.
func (c *Controller) saveFailed(ctx context.Context, gen uint64, user string, err error) {
	metrics.IncHistorySaveFailed()
	telemetry.Error("history.save_failed", map[string]any{
		"request_id": telemetry.RequestID(ctx),
		"user":       user,
		"error":      err.Error(),
	})
	c.mu.Lock()
	if gen == c.generation && c.status == StatusResults {
		c.warning = SaveWarning
	}
	c.mu.Unlock()
}

func (c *Controller) fail(ctx context.Context, gen uint64, user string, err error) {
	metrics.IncRoastFailed()
	telemetry.Error("roast.failed", map[string]any{
		"request_id":        telemetry.RequestID(ctx),
		"user":              user,
		"generation":        gen,
		"error_code":        analysis.Code(err),
		"error":             err.Error(),
		"status_transition": "analyzing->error",
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.status = StatusError
	c.result = nil
	c.errMsg = FailureMessage
}

// Reset returns Results or Error to Idle and clears held output.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	if c.status != StatusResults && c.status != StatusError {
		return
	}
	c.generation++
	c.status = StatusIdle
	c.result = nil
	c.errMsg = ""
	c.warning = ""
}

// NewRoast selects the Roast view, leaving a displayed result if any.
func (c *Controller) NewRoast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = ViewRoast
	if c.status == StatusResults {
		c.resetLocked()
	}
}

// ShowHistory selects the History view. Always allowed.
func (c *Controller) ShowHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = ViewHistory
}

// SetView applies a view selection coming from the API.
func (c *Controller) SetView(v View) error {
	switch v {
	case ViewRoast:
		c.NewRoast()
	case ViewHistory:
		c.ShowHistory()
	default:
		return ErrInvalidView
	}
	return nil
}

// SelectHistory displays a stored result without calling the analyzer.
func (c *Controller) SelectHistory(ctx context.Context, id string) (history.Item, error) {
	user, ok := c.session.Current()
	if !ok {
		return history.Item{}, ErrNotLoggedIn
	}
	item, err := c.history.Get(ctx, user, id)
	if err != nil {
		return history.Item{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	held := item.Result.Clone()
	c.generation++
	c.status = StatusResults
	c.result = &held
	c.errMsg = ""
	c.warning = ""
	c.view = ViewRoast
	return item, nil
}

// Login switches the current user and resets the screen so no other user's
// result stays visible.
func (c *Controller) Login(ctx context.Context, username string) (string, error) {
	name, err := c.session.Login(ctx, username)
	if err != nil {
		return "", err
	}
	c.globalReset()
	telemetry.Info("session.login", map[string]any{"user": name})
	return name, nil
}

// Logout clears the session and forces Idle with the Roast view.
func (c *Controller) Logout(ctx context.Context) error {
	user, _ := c.session.Current()
	if err := c.session.Logout(ctx); err != nil {
		return err
	}
	c.globalReset()
	telemetry.Info("session.logout", map[string]any{"user": user})
	return nil
}

func (c *Controller) globalReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.status = StatusIdle
	c.result = nil
	c.errMsg = ""
	c.warning = ""
	c.view = ViewRoast
}

// CurrentUser reports the logged-in username.
func (c *Controller) CurrentUser() (string, bool) {
	return c.session.Current()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	user, _ := c.session.Current()

	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		Status:  c.status,
		View:    c.view,
		Error:   c.errMsg,
		Warning: c.warning,
		User:    user,
	}
	if c.result != nil {
		held := c.result.Clone()
		snap.Result = &held
	}
	return snap
}

// History lists the current user's items. Empty when logged out.
func (c *Controller) History(ctx context.Context) ([]history.Item, error) {
	user, ok := c.session.Current()
	if !ok {
		return []history.Item{}, nil
	}
	return c.history.List(ctx, user)
}

// ClearHistory removes the current user's items. No-op when logged out.
func (c *Controller) ClearHistory(ctx context.Context) error {
	user, ok := c.session.Current()
	if !ok {
		return nil
	}
	if err := c.history.Clear(ctx, user); err != nil {
		return err
	}
	telemetry.Info("history.cleared", map[string]any{"user": user})
	return nil
}
