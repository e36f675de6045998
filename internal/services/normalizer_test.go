package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

const validAnalysisJSON = `{
	"summary": "Strong backend candidate with solid Go experience.",
	"skills": ["Go", "PostgreSQL"],
	"experience": ["5 years at Acme"],
	"education": ["BSc Computer Science"],
	"score": 72
}`

func TestParseAnalysisResponse(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		result, err := ParseAnalysisResponse(validAnalysisJSON)
		require.NoError(t, err)
		assert.Equal(t, 72, result.Score)
		assert.Equal(t, []string{"Go", "PostgreSQL"}, result.Skills)
		assert.Equal(t, []string{"5 years at Acme"}, result.Experience)
		assert.Equal(t, "Strong backend candidate with solid Go experience.", result.Summary)
	})

	t.Run("fenced response", func(t *testing.T) {
		result, err := ParseAnalysisResponse("```json\n" + validAnalysisJSON + "\n```")
		require.NoError(t, err)
		assert.Equal(t, 72, result.Score)
	})

	t.Run("empty response", func(t *testing.T) {
		_, err := ParseAnalysisResponse("   \n  ")
		assert.True(t, errors.Is(err, apperrors.ErrEmptyAIResponse))
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseAnalysisResponse("I could not analyze this resume, sorry.")
		assert.True(t, errors.Is(err, apperrors.ErrMalformedResponse))
	})

	t.Run("missing summary", func(t *testing.T) {
		_, err := ParseAnalysisResponse(`{"skills": ["Go"], "score": 50}`)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidStructure))
	})

	t.Run("missing skills", func(t *testing.T) {
		_, err := ParseAnalysisResponse(`{"summary": "ok", "score": 50}`)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidStructure))
	})

	t.Run("score as string is rejected", func(t *testing.T) {
		_, err := ParseAnalysisResponse(`{"summary": "ok", "skills": ["Go"], "score": "85"}`)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidStructure))
	})

	t.Run("skills as object is rejected", func(t *testing.T) {
		_, err := ParseAnalysisResponse(`{"summary": "ok", "skills": {"a": 1}, "score": 50}`)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidStructure))
	})

	t.Run("optional arrays default to empty", func(t *testing.T) {
		result, err := ParseAnalysisResponse(`{"summary": "ok", "skills": ["Go"], "score": 50}`)
		require.NoError(t, err)
		assert.Equal(t, []string{}, result.Experience)
		assert.Equal(t, []string{}, result.Education)
	})

	t.Run("null skills become empty array", func(t *testing.T) {
		result, err := ParseAnalysisResponse(`{"summary": "ok", "skills": null, "score": 50}`)
		require.NoError(t, err)
		assert.Equal(t, []string{}, result.Skills)
	})
}

func TestParseAnalysisResponseClamping(t *testing.T) {
	cases := []struct {
		name  string
		score string
		want  int
	}{
		{"above range", "150", 100},
		{"below range", "-20", 0},
		{"upper bound", "100", 100},
		{"lower bound", "0", 0},
		{"fraction rounds", "72.6", 73},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := `{"summary": "ok", "skills": ["Go"], "score": ` + tc.score + `}`
			result, err := ParseAnalysisResponse(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Score)
		})
	}
}

func TestParseMatchResponse(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		outcome, err := ParseMatchResponse(`{
			"matchScore": 88,
			"missingSkills": ["Kubernetes"],
			"suggestedEdits": ["Mention container orchestration work"],
			"aiSummary": "A close fit overall."
		}`)
		require.NoError(t, err)
		assert.Equal(t, 88, outcome.MatchScore)
		assert.Equal(t, []string{"Kubernetes"}, outcome.MissingSkills)
		assert.Equal(t, "A close fit overall.", outcome.AISummary)
	})

	t.Run("only score is required", func(t *testing.T) {
		outcome, err := ParseMatchResponse(`{"matchScore": 40}`)
		require.NoError(t, err)
		assert.Equal(t, []string{}, outcome.MissingSkills)
		assert.Equal(t, []string{}, outcome.SuggestedEdits)
		assert.Equal(t, DefaultAISummary, outcome.AISummary)
	})

	t.Run("blank summary falls back to default", func(t *testing.T) {
		outcome, err := ParseMatchResponse(`{"matchScore": 40, "aiSummary": "   "}`)
		require.NoError(t, err)
		assert.Equal(t, DefaultAISummary, outcome.AISummary)
	})

	t.Run("missing score", func(t *testing.T) {
		_, err := ParseMatchResponse(`{"missingSkills": []}`)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidStructure))
	})

	t.Run("match score clamps", func(t *testing.T) {
		outcome, err := ParseMatchResponse(`{"matchScore": 300}`)
		require.NoError(t, err)
		assert.Equal(t, 100, outcome.MatchScore)
	})
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"json tag", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{\"a\": 1}\n```  ", `{"a": 1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StripCodeFence(tc.in)
			assert.Equal(t, tc.want, got)
			// Stripping again must be a no-op.
			assert.Equal(t, got, StripCodeFence(got))
		})
	}
}
