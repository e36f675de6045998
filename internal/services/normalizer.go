package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

// DefaultAISummary is substituted when the model omits the match summary.
const DefaultAISummary = "No summary provided."

// AnalysisResult is the validated shape of an analysis response.
type AnalysisResult struct {
	Summary    string
	Skills     []string
	Experience []string
	Education  []string
	Score      int
}

// MatchOutcome is the validated shape of a match response.
type MatchOutcome struct {
	MatchScore     int
	MissingSkills  []string
	SuggestedEdits []string
	AISummary      string
}

// ParseAnalysisResponse validates the raw model output for the analysis
// prompt. The response is untrusted input: everything is checked
// structurally, scores are clamped, optional fields get defaults. Content is
// never semantically verified here.
func ParseAnalysisResponse(raw string) (*AnalysisResult, error) {
	fields, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	summary, err := requireString(fields, "summary")
	if err != nil {
		return nil, err
	}
	skills, err := requireStringArray(fields, "skills")
	if err != nil {
		return nil, err
	}
	score, err := requireNumber(fields, "score")
	if err != nil {
		return nil, err
	}
	experience, err := optionalStringArray(fields, "experience")
	if err != nil {
		return nil, err
	}
	education, err := optionalStringArray(fields, "education")
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		Summary:    summary,
		Skills:     skills,
		Experience: experience,
		Education:  education,
		Score:      clampScore(score),
	}, nil
}

// ParseMatchResponse validates the raw model output for the match prompt.
func ParseMatchResponse(raw string) (*MatchOutcome, error) {
	fields, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	score, err := requireNumber(fields, "matchScore")
	if err != nil {
		return nil, err
	}
	missingSkills, err := optionalStringArray(fields, "missingSkills")
	if err != nil {
		return nil, err
	}
	suggestedEdits, err := optionalStringArray(fields, "suggestedEdits")
	if err != nil {
		return nil, err
	}
	summary, err := optionalString(fields, "aiSummary", DefaultAISummary)
	if err != nil {
		return nil, err
	}

	return &MatchOutcome{
		MatchScore:     clampScore(score),
		MissingSkills:  missingSkills,
		SuggestedEdits: suggestedEdits,
		AISummary:      summary,
	}, nil
}

func parseObject(raw string) (map[string]json.RawMessage, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.New(apperrors.KindEmptyAIResponse, "model returned an empty response")
	}

	stripped := StripCodeFence(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripped), &fields); err != nil {
		return nil, apperrors.Wrap(apperrors.KindMalformedResponse,
			"model response is not valid JSON", err)
	}

	return fields, nil
}

// StripCodeFence removes a wrapping triple-backtick fence, with or without a
// language tag. Unfenced input passes through unchanged, so stripping is
// idempotent.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		// Drop the language tag line (possibly empty).
		text = text[i+1:]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}

// clampScore forces any numeric score into [0, 100] regardless of what the
// model claimed.
func clampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

func requireString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", apperrors.New(apperrors.KindInvalidStructure,
			fmt.Sprintf("missing required field %q", key))
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", apperrors.Wrap(apperrors.KindInvalidStructure,
			fmt.Sprintf("field %q must be a string", key), err)
	}
	return value, nil
}

func requireNumber(fields map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, apperrors.New(apperrors.KindInvalidStructure,
			fmt.Sprintf("missing required field %q", key))
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, apperrors.Wrap(apperrors.KindInvalidStructure,
			fmt.Sprintf("field %q must be a number", key), err)
	}
	return value, nil
}

func requireStringArray(fields map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, apperrors.New(apperrors.KindInvalidStructure,
			fmt.Sprintf("missing required field %q", key))
	}
	var value []string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidStructure,
			fmt.Sprintf("field %q must be an array of strings", key), err)
	}
	if value == nil {
		value = []string{}
	}
	return value, nil
}

func optionalStringArray(fields map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := fields[key]
	if !ok {
		return []string{}, nil
	}
	var value []string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, apperrors.Wrap(apperrors.KindInvalidStructure,
			fmt.Sprintf("field %q must be an array of strings", key), err)
	}
	if value == nil {
		value = []string{}
	}
	return value, nil
}

func optionalString(fields map[string]json.RawMessage, key, fallback string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return fallback, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", apperrors.Wrap(apperrors.KindInvalidStructure,
			fmt.Sprintf("field %q must be a string", key), err)
	}
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return value, nil
}
