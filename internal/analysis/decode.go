package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type wireResult struct {
	MatchScore      json.RawMessage  `json:"matchScore"`
	MissingKeywords *[]string        `json:"missingKeywords"`
	CritiquePoints  *[]CritiquePoint `json:"critiquePoints"`
	RoastComment    *string          `json:"roastComment"`
}

// Decode validates a provider reply and converts it into a Result.
// Markdown code fences around the JSON are tolerated. More than three
// critique points are truncated; fewer is a FormatError.
func Decode(raw string) (Result, error) {
	body := cleanJSON(raw)
	if body == "" {
		return Result{}, &FormatError{Reason: "empty response", Raw: raw}
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return Result{}, &FormatError{Reason: fmt.Sprintf("invalid JSON: %v", err), Raw: raw}
	}

	score, err := parseScore(wire.MatchScore)
	if err != nil {
		return Result{}, &FormatError{Reason: err.Error(), Raw: raw}
	}
	if wire.MissingKeywords == nil {
		return Result{}, &FormatError{Reason: "missing missingKeywords", Raw: raw}
	}
	if wire.CritiquePoints == nil {
		return Result{}, &FormatError{Reason: "missing critiquePoints", Raw: raw}
	}
	if wire.RoastComment == nil {
		return Result{}, &FormatError{Reason: "missing roastComment", Raw: raw}
	}
	if strings.TrimSpace(*wire.RoastComment) == "" {
		return Result{}, &FormatError{Reason: "empty roastComment", Raw: raw}
	}

	points := *wire.CritiquePoints
	if len(points) < CritiquePointCount {
		return Result{}, &FormatError{
			Reason: fmt.Sprintf("expected %d critiquePoints, got %d", CritiquePointCount, len(points)),
			Raw:    raw,
		}
	}
	points = points[:CritiquePointCount]
	for i, p := range points {
		if strings.TrimSpace(p.Original) == "" || strings.TrimSpace(p.Feedback) == "" || strings.TrimSpace(p.Rewritten) == "" {
			return Result{}, &FormatError{Reason: fmt.Sprintf("critiquePoints[%d] has an empty field", i), Raw: raw}
		}
	}

	keywords := *wire.MissingKeywords
	if keywords == nil {
		keywords = []string{}
	}
	return Result{
		MatchScore:      score,
		MissingKeywords: keywords,
		CritiquePoints:  append([]CritiquePoint(nil), points...),
		RoastComment:    *wire.RoastComment,
	}, nil
}

// parseScore accepts a JSON number that is a whole value in [0,100].
func parseScore(raw json.RawMessage) (int, error) {
	token := strings.TrimSpace(string(raw))
	if token == "" || token == "null" {
		return 0, fmt.Errorf("missing matchScore")
	}
	if strings.HasPrefix(token, `"`) {
		return 0, fmt.Errorf("matchScore is not a number")
	}
	f, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("matchScore is not a number")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("matchScore %s is not an integer", token)
	}
	if f < 0 || f > 100 {
		return 0, fmt.Errorf("matchScore %s out of range [0,100]", token)
	}
	return int(f), nil
}

// cleanJSON strips surrounding whitespace and markdown fences.
func cleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}
