package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

// MatcherService runs the end-to-end "match a resume against a job" flow.
// A (resume, job) pair is matched at most once: re-matching is rejected with
// the existing result, and the composite unique index closes the
// check-then-act race under concurrent requests.
type MatcherService interface {
	Match(ctx context.Context, userID, resumeID, jobID uuid.UUID) (*models.MatchResult, error)
}

type matcherService struct {
	resumeRepo    repositories.ResumeRepository
	jobRepo       repositories.JobRepository
	matchRepo     repositories.MatchRepository
	usageService  UsageService
	llm           LLMClient
	promptBuilder *PromptBuilder
}

func NewMatcherService(
	resumeRepo repositories.ResumeRepository,
	jobRepo repositories.JobRepository,
	matchRepo repositories.MatchRepository,
	usageService UsageService,
	llm LLMClient,
) MatcherService {
	return &matcherService{
		resumeRepo:    resumeRepo,
		jobRepo:       jobRepo,
		matchRepo:     matchRepo,
		usageService:  usageService,
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
	}
}

// Match implements MatcherService.
func (s *matcherService) Match(ctx context.Context, userID, resumeID, jobID uuid.UUID) (*models.MatchResult, error) {
	access, err := s.usageService.CheckAccess(userID, FeatureMatchesPerMonth)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess {
		return nil, apperrors.QuotaExceeded("monthly match", access.Limit, access.Remaining)
	}

	if resumeID == uuid.Nil || jobID == uuid.Nil {
		return nil, apperrors.New(apperrors.KindBadRequest, "resume_id and job_id are required")
	}

	resume, err := s.resumeRepo.FindByIDForUser(resumeID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "resume not found")
		}
		return nil, err
	}

	job, err := s.jobRepo.FindByIDForUser(jobID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "job description not found")
		}
		return nil, err
	}

	if resume.ParsedText == nil || *resume.ParsedText == "" {
		return nil, apperrors.New(apperrors.KindNoTextAvailable,
			"resume has no extracted text, please re-upload")
	}

	if existing, err := s.matchRepo.FindByPair(resumeID, jobID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.DuplicateMatch(existing)
	}

	prompt := s.promptBuilder.BuildMatchPrompt(*resume.ParsedText, job, resume.Analysis)

	completion, err := s.llm.Complete(ctx, SystemInstruction, prompt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMatchFailed, "match failed", err)
	}

	outcome, err := ParseMatchResponse(completion.Text)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindMatchFailed, "match failed", err)
	}

	match := &models.MatchResult{
		ID:               uuid.New(),
		ResumeID:         resumeID,
		JobDescriptionID: jobID,
		MatchScore:       outcome.MatchScore,
		MissingSkills:    models.StringList(outcome.MissingSkills),
		SuggestedEdits:   models.StringList(outcome.SuggestedEdits),
		AISummary:        outcome.AISummary,
	}

	if err := s.matchRepo.Create(match); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// A concurrent request won the pair constraint; hand back its row.
			existing, findErr := s.matchRepo.FindByPair(resumeID, jobID)
			if findErr == nil && existing != nil {
				return nil, apperrors.DuplicateMatch(existing)
			}
		}
		return nil, err
	}

	if err := s.usageService.RecordUsage(
		userID,
		models.FeatureMatch,
		fmt.Sprintf("match resume with job: %s", job.Title),
		completion.Text,
		s.llm.ModelName(),
		completion.TokensUsed,
	); err != nil {
		slog.Warn("failed to record match usage",
			"user_id", userID, "resume_id", resumeID, "job_id", jobID, "error", err)
	}

	slog.Info("resume matched",
		"user_id", userID, "resume_id", resumeID, "job_id", jobID, "score", match.MatchScore)

	return match, nil
}
