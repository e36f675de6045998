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

// AnalyzerService runs the end-to-end "analyze a resume" flow: quota gate,
// entity preconditions, prompt, LLM call, normalization, persistence, usage
// log. Failures leave no partial state and are never retried here.
type AnalyzerService interface {
	Analyze(ctx context.Context, userID, resumeID uuid.UUID, jobDescription string) (*models.Analysis, error)
}

type analyzerService struct {
	resumeRepo    repositories.ResumeRepository
	usageService  UsageService
	llm           LLMClient
	promptBuilder *PromptBuilder
}

func NewAnalyzerService(
	resumeRepo repositories.ResumeRepository,
	usageService UsageService,
	llm LLMClient,
) AnalyzerService {
	return &analyzerService{
		resumeRepo:    resumeRepo,
		usageService:  usageService,
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
	}
}

// Analyze implements AnalyzerService. Preconditions are checked in a fixed
// order, each with its own failure kind, before the LLM is ever invoked.
func (s *analyzerService) Analyze(ctx context.Context, userID, resumeID uuid.UUID, jobDescription string) (*models.Analysis, error) {
	access, err := s.usageService.CheckAccess(userID, FeatureAnalysisPerMonth)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess {
		return nil, apperrors.QuotaExceeded("monthly analysis", access.Limit, access.Remaining)
	}

	resume, err := s.resumeRepo.FindByIDForUser(resumeID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "resume not found")
		}
		return nil, err
	}

	if resume.Analysis != nil {
		return nil, apperrors.AlreadyAnalyzed(resume.Analysis)
	}

	if resume.ParsedText == nil || *resume.ParsedText == "" {
		return nil, apperrors.New(apperrors.KindNoTextAvailable,
			"resume has no extracted text, please re-upload")
	}

	prompt := s.promptBuilder.BuildAnalysisPrompt(*resume.ParsedText, jobDescription)

	completion, err := s.llm.Complete(ctx, SystemInstruction, prompt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindAnalysisFailed, "analysis failed", err)
	}

	result, err := ParseAnalysisResponse(completion.Text)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindAnalysisFailed, "analysis failed", err)
	}

	analysis := &models.Analysis{
		ID:         uuid.New(),
		ResumeID:   resume.ID,
		Summary:    result.Summary,
		Skills:     models.StringList(result.Skills),
		Experience: models.StringList(result.Experience),
		Education:  models.StringList(result.Education),
		Score:      result.Score,
		AIModel:    s.llm.ModelName(),
	}

	if err := s.resumeRepo.CreateAnalysis(analysis); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// A concurrent request won the 1:1 constraint; hand back its row.
			existing, findErr := s.resumeRepo.FindAnalysisByResume(resume.ID)
			if findErr == nil && existing != nil {
				return nil, apperrors.AlreadyAnalyzed(existing)
			}
		}
		return nil, err
	}

	if err := s.usageService.RecordUsage(
		userID,
		models.FeatureAnalysis,
		fmt.Sprintf("analyze resume: %s", resume.FileName),
		completion.Text,
		s.llm.ModelName(),
		completion.TokensUsed,
	); err != nil {
		// The analysis is already persisted; losing the ledger row only
		// under-counts the quota.
		slog.Warn("failed to record analysis usage",
			"user_id", userID, "resume_id", resumeID, "error", err)
	}

	slog.Info("resume analyzed",
		"user_id", userID, "resume_id", resumeID, "score", analysis.Score)

	return analysis, nil
}
