package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/pkg/apperrors"
)

func newAnalyzer(t *testing.T, db *gorm.DB, llm LLMClient) AnalyzerService {
	t.Helper()

	return NewAnalyzerService(
		repositories.NewResumeRepository(db),
		newUsageService(t, db),
		llm,
	)
}

func TestAnalyzeHappyPath(t *testing.T) {
	db := newTestDB(t)
	llm := &fakeLLM{response: validAnalysisJSON}
	analyzer := newAnalyzer(t, db, llm)

	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")

	analysis, err := analyzer.Analyze(context.Background(), user.ID, resume.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 72, analysis.Score)
	assert.Equal(t, resume.ID, analysis.ResumeID)
	assert.Equal(t, "fake-model", analysis.AIModel)
	assert.Equal(t, 1, llm.calls)

	// Persisted and visible on the resume.
	stored, err := repositories.NewResumeRepository(db).FindByIDForUser(resume.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Analysis)
	assert.Equal(t, analysis.ID, stored.Analysis.ID)

	// Exactly one usage event of the analysis kind.
	var events []models.AIInteraction
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.FeatureAnalysis, events[0].FeatureKind)
}

func TestAnalyzeAlreadyAnalyzed(t *testing.T) {
	db := newTestDB(t)
	llm := &fakeLLM{response: validAnalysisJSON}
	analyzer := newAnalyzer(t, db, llm)

	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")

	first, err := analyzer.Analyze(context.Background(), user.ID, resume.ID, "")
	require.NoError(t, err)

	_, err = analyzer.Analyze(context.Background(), user.ID, resume.ID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyAnalyzed))

	// The error carries the existing row and the model was not called again.
	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	existing, ok := appErr.Record.(*models.Analysis)
	require.True(t, ok)
	assert.Equal(t, first.ID, existing.ID)
	assert.Equal(t, 1, llm.calls)
}

func TestAnalyzeQuotaBlocksBeforeLLM(t *testing.T) {
	db := newTestDB(t)
	llm := &fakeLLM{response: validAnalysisJSON}

	usageSvc := newUsageService(t, db)
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	usageSvc.now = func() time.Time { return now }
	analyzer := NewAnalyzerService(repositories.NewResumeRepository(db), usageSvc, llm)

	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")
	for i := 0; i < 3; i++ {
		appendInteraction(t, db, user.ID, models.FeatureAnalysis, now.Add(-time.Hour))
	}

	_, err := analyzer.Analyze(context.Background(), user.ID, resume.ID, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrQuotaExceeded))
	assert.Equal(t, 0, llm.calls)

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 3, appErr.Limit)
	assert.Equal(t, 0, appErr.Remaining)
}

func TestAnalyzePreconditions(t *testing.T) {
	db := newTestDB(t)
	llm := &fakeLLM{response: validAnalysisJSON}
	analyzer := newAnalyzer(t, db, llm)
	user := seedUser(t, db, models.PlanFree)

	t.Run("unknown resume", func(t *testing.T) {
		_, err := analyzer.Analyze(context.Background(), user.ID, uuid.New(), "")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("foreign resume looks missing", func(t *testing.T) {
		other := seedUser(t, db, models.PlanFree)
		foreign := seedResume(t, db, other.ID, "some other person's resume text")

		_, err := analyzer.Analyze(context.Background(), user.ID, foreign.ID, "")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("no parsed text", func(t *testing.T) {
		resume := seedResume(t, db, user.ID, "")
		_, err := analyzer.Analyze(context.Background(), user.ID, resume.ID, "")
		assert.True(t, errors.Is(err, apperrors.ErrNoTextAvailable))
		assert.Equal(t, 0, llm.calls)
	})
}

func TestAnalyzeFailureLeavesNoState(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")

	t.Run("malformed model output", func(t *testing.T) {
		analyzer := newAnalyzer(t, db, &fakeLLM{response: "sorry, I cannot help"})
		_, err := analyzer.Analyze(context.Background(), user.ID, resume.ID, "")
		assert.True(t, errors.Is(err, apperrors.ErrAnalysisFailed))
	})

	t.Run("transport error", func(t *testing.T) {
		analyzer := newAnalyzer(t, db, &fakeLLM{err: errors.New("connection reset")})
		_, err := analyzer.Analyze(context.Background(), user.ID, resume.ID, "")
		assert.True(t, errors.Is(err, apperrors.ErrAnalysisFailed))
	})

	// No analysis row and no usage event after either failure.
	stored, err := repositories.NewResumeRepository(db).FindAnalysisByResume(resume.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	var count int64
	require.NoError(t, db.Model(&models.AIInteraction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
}
