package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

type Feature string

const (
	FeatureResumes          Feature = "resumes"
	FeatureAnalysisPerMonth Feature = "analysisPerMonth"
	FeatureMatchesPerMonth  Feature = "matchesPerMonth"
	FeatureJobDescriptions  Feature = "jobDescriptions"
)

// featureLimits is the static per-plan quota table.
var featureLimits = map[models.Plan]map[Feature]models.Limit{
	models.PlanFree: {
		FeatureResumes:          models.Finite(3),
		FeatureAnalysisPerMonth: models.Finite(3),
		FeatureMatchesPerMonth:  models.Finite(5),
		FeatureJobDescriptions:  models.Finite(3),
	},
	models.PlanPremium: {
		FeatureResumes:          models.Unbounded(),
		FeatureAnalysisPerMonth: models.Unbounded(),
		FeatureMatchesPerMonth:  models.Unbounded(),
		FeatureJobDescriptions:  models.Unbounded(),
	},
}

// Access is the gate decision for one feature. Limit and Remaining are -1 on
// unbounded plans.
type Access struct {
	CanAccess bool
	Remaining int
	Limit     int
}

// UsageService is the usage ledger: it derives gate decisions from the
// append-only interaction log and live entity counts, and appends new usage
// events. Counts are recomputed on every check; nothing is cached.
type UsageService interface {
	CheckAccess(userID uuid.UUID, feature Feature) (*Access, error)
	RecordUsage(userID uuid.UUID, kind models.FeatureKind, prompt, response, model string, tokensUsed *int) error
	UserLimits(userID uuid.UUID) (*models.UsageResponse, error)
}

type usageService struct {
	userRepo   repositories.UserRepository
	resumeRepo repositories.ResumeRepository
	jobRepo    repositories.JobRepository
	usageRepo  repositories.UsageRepository
	now        func() time.Time
}

func NewUsageService(
	userRepo repositories.UserRepository,
	resumeRepo repositories.ResumeRepository,
	jobRepo repositories.JobRepository,
	usageRepo repositories.UsageRepository,
) UsageService {
	return &usageService{
		userRepo:   userRepo,
		resumeRepo: resumeRepo,
		jobRepo:    jobRepo,
		usageRepo:  usageRepo,
		now:        time.Now,
	}
}

func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// CheckAccess implements UsageService. Monthly features count interaction
// rows since the first of the current calendar month; cumulative features
// count owned rows live.
func (s *usageService) CheckAccess(userID uuid.UUID, feature Feature) (*Access, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Never expected on authenticated paths.
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	limit, ok := featureLimits[user.Plan][feature]
	if !ok {
		return nil, fmt.Errorf("unknown feature %q", feature)
	}

	used, err := s.countUsed(userID, feature)
	if err != nil {
		return nil, err
	}

	return &Access{
		CanAccess: limit.Allows(used),
		Remaining: limit.Remaining(used),
		Limit:     limit.Value(),
	}, nil
}

func (s *usageService) countUsed(userID uuid.UUID, feature Feature) (int, error) {
	var (
		count int64
		err   error
	)

	switch feature {
	case FeatureResumes:
		count, err = s.resumeRepo.CountByUser(userID)
	case FeatureJobDescriptions:
		count, err = s.jobRepo.CountByUser(userID)
	case FeatureAnalysisPerMonth:
		count, err = s.usageRepo.CountByKindSince(userID, models.FeatureAnalysis, monthStart(s.now()))
	case FeatureMatchesPerMonth:
		count, err = s.usageRepo.CountByKindSince(userID, models.FeatureMatch, monthStart(s.now()))
	default:
		return 0, fmt.Errorf("unknown feature %q", feature)
	}
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// RecordUsage implements UsageService. Appends one immutable event; the kind
// is fixed at write time so reads never have to infer it from the prompt
// text.
func (s *usageService) RecordUsage(userID uuid.UUID, kind models.FeatureKind, prompt, response, model string, tokensUsed *int) error {
	return s.usageRepo.Append(&models.AIInteraction{
		ID:          uuid.New(),
		UserID:      userID,
		FeatureKind: kind,
		Prompt:      prompt,
		Response:    response,
		Model:       model,
		TokensUsed:  tokensUsed,
	})
}

// UserLimits implements UsageService, backing the usage report endpoint.
func (s *usageService) UserLimits(userID uuid.UUID) (*models.UsageResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	limits := make(map[string]models.FeatureUsage, 4)
	for _, feature := range []Feature{
		FeatureResumes, FeatureAnalysisPerMonth, FeatureMatchesPerMonth, FeatureJobDescriptions,
	} {
		used, err := s.countUsed(userID, feature)
		if err != nil {
			return nil, err
		}
		limits[string(feature)] = models.FeatureUsage{
			Used:  used,
			Limit: featureLimits[user.Plan][feature].Value(),
		}
	}

	return &models.UsageResponse{
		Plan:   user.Plan,
		Limits: limits,
	}, nil
}
