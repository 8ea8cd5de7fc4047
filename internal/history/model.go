package history

import (
	"strings"
	"unicode/utf8"

	"resume-roaster/internal/analysis"
)

const (
	previewLimit   = 60
	unknownPreview = "Unknown Position"
)

// Item is one persisted past analysis.
type Item struct {
	ID         string          `json:"id"`
	Timestamp  int64           `json:"timestamp"`
	JobPreview string          `json:"jobPreview"`
	MatchScore int             `json:"matchScore"`
	Result     analysis.Result `json:"result"`
}

// JobPreview returns the trimmed job description cut to 60 characters
// with an ellipsis, or "Unknown Position" when blank.
func JobPreview(jobDescription string) string {
	trimmed := strings.TrimSpace(jobDescription)
	if trimmed == "" {
		return unknownPreview
	}
	if utf8.RuneCountInString(trimmed) <= previewLimit {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:previewLimit]) + "..."
}
