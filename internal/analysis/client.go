// Package analysis turns a resume and job description into a validated
// Result by calling a text-generation provider with a strict JSON schema.
package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"resume-roaster/internal/llm"
	"resume-roaster/internal/shared/telemetry"
)

// Analyzer is the contract the controller depends on.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (Result, error)
}

// Client is the Analyzer backed by an llm.Client.
type Client struct {
	llm      llm.Client
	provider string
	model    string
	now      func() time.Time
}

// New wraps a provider client. A nil provider yields ErrConfiguration on every call.
func New(client llm.Client, provider, model string) *Client {
	return &Client{llm: client, provider: provider, model: model, now: time.Now}
}

// Analyze builds the prompt, calls the provider once and decodes the reply.
// Inputs are not re-validated here.
func (c *Client) Analyze(ctx context.Context, resumeText, jobDescription string) (Result, error) {
	if c == nil || c.llm == nil {
		return Result{}, ErrConfiguration
	}

	started := c.now()
	raw, err := c.llm.Generate(ctx, buildRequest(resumeText, jobDescription))
	if errors.Is(err, llm.ErrEmptyResponse) {
		formatErr := &FormatError{Reason: "empty response"}
		c.logOutcome(started, formatErr, nil)
		return Result{}, formatErr
	}
	if err != nil {
		serviceErr := &ServiceError{Provider: c.provider, Err: err}
		c.logOutcome(started, serviceErr, nil)
		return Result{}, serviceErr
	}

	result, err := Decode(raw)
	if err != nil {
		c.logOutcome(started, err, map[string]any{"raw_bytes": len(raw)})
		return Result{}, err
	}

	c.logOutcome(started, nil, map[string]any{
		"match_score":          result.MatchScore,
		"unverified_originals": countUnverifiedOriginals(resumeText, result.CritiquePoints),
	})
	return result, nil
}

func (c *Client) logOutcome(started time.Time, err error, extra map[string]any) {
	fields := map[string]any{
		"provider":    c.provider,
		"model":       c.model,
		"duration_ms": c.now().Sub(started).Milliseconds(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	if err != nil {
		fields["error_code"] = Code(err)
		fields["error"] = err.Error()
		telemetry.Error("analysis.failed", fields)
		return
	}
	telemetry.Info("analysis.completed", fields)
}

// countUnverifiedOriginals reports critique excerpts that are not verbatim
// substrings of the resume. Diagnostic only.
func countUnverifiedOriginals(resumeText string, points []CritiquePoint) int {
	n := 0
	for _, p := range points {
		if !strings.Contains(resumeText, strings.TrimSpace(p.Original)) {
			n++
		}
	}
	return n
}

var _ Analyzer = (*Client)(nil)
