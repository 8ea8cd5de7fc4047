package roaster

import (
	"errors"

	"resume-roaster/internal/analysis"
)

// Status is the analysis state machine position.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusAnalyzing Status = "analyzing"
	StatusResults   Status = "results"
	StatusError     Status = "error"
)

// View selects the top-level screen, independent of Status.
type View string

const (
	ViewRoast   View = "roast"
	ViewHistory View = "history"
)

const (
	// FailureMessage is the only analysis failure text users ever see.
	FailureMessage = "Failed to generate roast. Please check your API Key and try again."
	// SaveWarning is shown next to results that could not be persisted.
	SaveWarning = "Roast complete, but it could not be saved to your history."
)

var (
	ErrInvalidInput = errors.New("resume text and job description are required")
	ErrBusy         = errors.New("an analysis is already in progress")
	ErrNotLoggedIn  = errors.New("no user is logged in")
	ErrInvalidView  = errors.New("unknown view")
)

// Snapshot is an immutable copy of the controller state.
type Snapshot struct {
	Status  Status           `json:"status"`
	View    View             `json:"view"`
	Result  *analysis.Result `json:"result,omitempty"`
	Error   string           `json:"error,omitempty"`
	Warning string           `json:"warning,omitempty"`
	User    string           `json:"user,omitempty"`
}

// ParseView maps an API value to a View.
func ParseView(raw string) (View, error) {
	switch View(raw) {
	case ViewRoast, ViewHistory:
		return View(raw), nil
	default:
		return "", ErrInvalidView
	}
}
