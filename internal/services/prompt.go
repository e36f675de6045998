package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/resume-matcher/internal/models"
)

// SystemInstruction is sent with every completion request.
const SystemInstruction = "You are a resume analysis assistant. Respond with valid JSON only, no markdown fences, no commentary, no extra fields."

// PromptBuilder assembles the instruction strings sent to the LLM. All
// methods are pure: the same inputs always produce the same text, which the
// golden tests rely on.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the resume-analysis instruction. When the
// caller supplies a target job description the scoring is asked to weigh
// relevance to it.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText, jobDescription string) string {
	var context strings.Builder
	if strings.TrimSpace(jobDescription) != "" {
		context.WriteString(fmt.Sprintf(`TARGET JOB DESCRIPTION (score the resume against this role):
%s

`, jobDescription))
	}

	return fmt.Sprintf(`You are an expert HR recruiter analyzing a candidate's resume.

%sRESUME TEXT:
%s

Score the resume using this rubric (weights sum to 100):
1. Skills relevance and depth (Weight: 40%%)
2. Experience quality and progression (Weight: 30%%)
3. Education and credentials (Weight: 15%%)
4. Overall presentation and fit (Weight: 15%%)

Return your response as a single JSON object with exactly these fields:
{
  "summary": "<3-5 sentence overview of the candidate>",
  "skills": ["<skill>", ...],
  "experience": ["<experience description>", ...],
  "education": ["<education description>", ...],
  "score": <integer 0-100>
}

Rules:
- "summary" must be a string, "skills"/"experience"/"education" must be arrays of strings, "score" must be an integer between 0 and 100.
- Extract skills and experience directly from the resume text, do not invent.
- Return ONLY the JSON object. No markdown fences, no commentary, no extra fields.`,
		context.String(), resumeText)
}

// BuildMatchPrompt creates the resume-to-job compatibility instruction. A
// prior analysis, when present, is embedded as additional context.
func (pb *PromptBuilder) BuildMatchPrompt(resumeText string, job *models.JobDescription, analysis *models.Analysis) string {
	var analysisBlock strings.Builder
	if analysis != nil {
		analysisBlock.WriteString(fmt.Sprintf(`PRIOR RESUME ANALYSIS:
- Score: %d/100
- Skills: %s
- Summary: %s

`, analysis.Score, strings.Join(analysis.Skills, ", "), analysis.Summary))
	}

	return fmt.Sprintf(`You are an expert recruiter assessing how well a resume fits a job opening.

JOB TITLE: %s
COMPANY: %s

JOB DESCRIPTION:
%s

REQUIRED SKILLS:
%s

%sRESUME TEXT:
%s

Score the compatibility using this rubric (weights sum to 100):
1. Skills alignment with the required skills (Weight: 40%%)
2. Experience relevance to the role (Weight: 30%%)
3. Education and credentials (Weight: 15%%)
4. Overall fit (Weight: 15%%)

Return your response as a single JSON object with exactly these fields:
{
  "matchScore": <integer 0-100>,
  "missingSkills": ["<required skill absent from the resume>", ...],
  "suggestedEdits": ["<concrete edit to improve the resume for this job>", ...],
  "aiSummary": "<3-5 sentence assessment of the fit>"
}

Rules:
- "matchScore" must be an integer between 0 and 100.
- "missingSkills" must contain at most 10 entries.
- "missingSkills" and "suggestedEdits" must be arrays of strings, "aiSummary" must be a string.
- Return ONLY the JSON object. No markdown fences, no commentary, no extra fields.`,
		job.Title, job.CompanyName, job.Description,
		strings.Join(job.Skills, ", "), analysisBlock.String(), resumeText)
}
