package analysis

// CritiquePointCount is the number of critique points a valid result carries.
const CritiquePointCount = 3

// Result is the verdict on one resume and job description pair.
type Result struct {
	MatchScore      int             `json:"matchScore"`
	MissingKeywords []string        `json:"missingKeywords"`
	CritiquePoints  []CritiquePoint `json:"critiquePoints"`
	RoastComment    string          `json:"roastComment"`
}

// CritiquePoint is one weak spot in the resume and its fix.
type CritiquePoint struct {
	Original  string `json:"original"`
	Feedback  string `json:"feedback"`
	Rewritten string `json:"rewritten"`
}

// Clone returns a deep copy so callers can hand results across goroutines.
func (r Result) Clone() Result {
	out := r
	if r.MissingKeywords != nil {
		out.MissingKeywords = append([]string(nil), r.MissingKeywords...)
	}
	if r.CritiquePoints != nil {
		out.CritiquePoints = append([]CritiquePoint(nil), r.CritiquePoints...)
	}
	return out
}
