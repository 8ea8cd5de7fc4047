package analysis

import (
	"fmt"

	"resume-roaster/internal/llm"
)

const systemInstruction = "You are a brutally honest hiring manager. Do not sugarcoat anything."

const temperature = 0.7

const promptTemplate = `
You are a strict, no-nonsense, elite Hiring Manager at a top tech company. You have seen thousands of bad resumes.

Task: Review the provided Candidate Resume against the Job Description.

Job Description:
"%s"

Candidate Resume:
"%s"

Output strictly in JSON format.
1. Calculate a harsh but fair 'matchScore' (0-100).
2. Identify critical 'missingKeywords' that would cause an ATS (Applicant Tracking System) to auto-reject this resume.
3. Pick 3 specific bullet points or sentences that are weak, vague, or cliché. Provide the 'original' text, your 'feedback' on why it sucks, and a 'rewritten' version that is quantified, action-oriented, and impressive.
4. Provide a 'roastComment': a one or two-sentence summary that is brutally honest and slightly funny about why you might pass on this candidate.
`

// BuildPrompt embeds both texts verbatim. No escaping is applied.
func BuildPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(promptTemplate, jobDescription, resumeText)
}

// ResultSchema is the structured-output contract requested from the provider.
func ResultSchema() *llm.Schema {
	return &llm.Schema{
		Type: llm.TypeObject,
		Properties: map[string]*llm.Schema{
			"matchScore": {
				Type:        llm.TypeInteger,
				Description: "A score from 0 to 100 indicating how well the resume matches the job description.",
			},
			"missingKeywords": {
				Type:        llm.TypeArray,
				Items:       &llm.Schema{Type: llm.TypeString},
				Description: "List of critical keywords or skills found in the job description but missing from the resume.",
			},
			"critiquePoints": {
				Type: llm.TypeArray,
				Items: &llm.Schema{
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"original":  {Type: llm.TypeString, Description: "The original weak bullet point or section from the resume."},
						"feedback":  {Type: llm.TypeString, Description: "Why this is weak or bad."},
						"rewritten": {Type: llm.TypeString, Description: "A much stronger, ATS-optimized version of the bullet point."},
					},
					Order:    []string{"original", "feedback", "rewritten"},
					Required: []string{"original", "feedback", "rewritten"},
				},
				Description: "Identify exactly 3 specific areas for improvement.",
			},
			"roastComment": {
				Type:        llm.TypeString,
				Description: "A short, witty, and slightly mean 'roast' from the perspective of a tired hiring manager.",
			},
		},
		Order:    []string{"matchScore", "missingKeywords", "critiquePoints", "roastComment"},
		Required: []string{"matchScore", "missingKeywords", "critiquePoints", "roastComment"},
	}
}

func buildRequest(resumeText, jobDescription string) llm.Request {
	return llm.Request{
		Prompt:            BuildPrompt(resumeText, jobDescription),
		SystemInstruction: systemInstruction,
		Schema:            ResultSchema(),
		Temperature:       llm.Float32(temperature),
	}
}
