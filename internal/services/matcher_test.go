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

const validMatchJSON = `{
	"matchScore": 88,
	"missingSkills": ["Kubernetes"],
	"suggestedEdits": ["Mention container orchestration work"],
	"aiSummary": "A close fit overall."
}`

func newMatcher(t *testing.T, db *gorm.DB, llm LLMClient) MatcherService {
	t.Helper()

	return NewMatcherService(
		repositories.NewResumeRepository(db),
		repositories.NewJobRepository(db),
		repositories.NewMatchRepository(db),
		newUsageService(t, db),
		llm,
	)
}

func TestMatchHappyPath(t *testing.T) {
	db := newTestDB(t)
	llm := &fakeLLM{response: validMatchJSON}
	matcher := newMatcher(t, db, llm)

	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")
	job := seedJob(t, db, user.ID)

	match, err := matcher.Match(context.Background(), user.ID, resume.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 88, match.MatchScore)
	assert.Equal(t, resume.ID, match.ResumeID)
	assert.Equal(t, job.ID, match.JobDescriptionID)
	assert.Equal(t, models.StringList{"Kubernetes"}, match.MissingSkills)
	assert.Equal(t, "A close fit overall.", match.AISummary)

	stored, err := repositories.NewMatchRepository(db).FindByPair(resume.ID, job.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, match.ID, stored.ID)

	var events []models.AIInteraction
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.FeatureMatch, events[0].FeatureKind)
}

func TestMatchDuplicatePair(t *testing.T) {
	db := newTestDB(t)
	llm := &fakeLLM{response: validMatchJSON}
	matcher := newMatcher(t, db, llm)

	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")
	job := seedJob(t, db, user.ID)

	first, err := matcher.Match(context.Background(), user.ID, resume.ID, job.ID)
	require.NoError(t, err)

	_, err = matcher.Match(context.Background(), user.ID, resume.ID, job.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateMatch))

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	existing, ok := appErr.Record.(*models.MatchResult)
	require.True(t, ok)
	assert.Equal(t, first.ID, existing.ID)

	// The duplicate attempt never reached the model.
	assert.Equal(t, 1, llm.calls)

	// A different job for the same resume is a new pair.
	otherJob := seedJob(t, db, user.ID)
	_, err = matcher.Match(context.Background(), user.ID, resume.ID, otherJob.ID)
	assert.NoError(t, err)
}

func TestMatchQuotaBlocksBeforeLLM(t *testing.T) {
	db := newTestDB(t)
	llm := &fakeLLM{response: validMatchJSON}

	usageSvc := newUsageService(t, db)
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	usageSvc.now = func() time.Time { return now }
	matcher := NewMatcherService(
		repositories.NewResumeRepository(db),
		repositories.NewJobRepository(db),
		repositories.NewMatchRepository(db),
		usageSvc,
		llm,
	)

	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")
	job := seedJob(t, db, user.ID)
	for i := 0; i < 5; i++ {
		appendInteraction(t, db, user.ID, models.FeatureMatch, now.Add(-time.Hour))
	}

	_, err := matcher.Match(context.Background(), user.ID, resume.ID, job.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrQuotaExceeded))
	assert.Equal(t, 0, llm.calls)
}

func TestMatchPreconditions(t *testing.T) {
	db := newTestDB(t)
	llm := &fakeLLM{response: validMatchJSON}
	matcher := newMatcher(t, db, llm)

	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")
	job := seedJob(t, db, user.ID)

	t.Run("nil ids", func(t *testing.T) {
		_, err := matcher.Match(context.Background(), user.ID, uuid.Nil, job.ID)
		assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
	})

	t.Run("unknown resume", func(t *testing.T) {
		_, err := matcher.Match(context.Background(), user.ID, uuid.New(), job.ID)
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("unknown job", func(t *testing.T) {
		_, err := matcher.Match(context.Background(), user.ID, resume.ID, uuid.New())
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("no parsed text", func(t *testing.T) {
		empty := seedResume(t, db, user.ID, "")
		_, err := matcher.Match(context.Background(), user.ID, empty.ID, job.ID)
		assert.True(t, errors.Is(err, apperrors.ErrNoTextAvailable))
	})

	assert.Equal(t, 0, llm.calls)
}

func TestMatchFailureLeavesNoState(t *testing.T) {
	db := newTestDB(t)
	matcher := newMatcher(t, db, &fakeLLM{response: `{"missingSkills": []}`})

	user := seedUser(t, db, models.PlanFree)
	resume := seedResume(t, db, user.ID, "Jane Smith, staff engineer, ten years of Go.")
	job := seedJob(t, db, user.ID)

	_, err := matcher.Match(context.Background(), user.ID, resume.ID, job.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMatchFailed))

	stored, err := repositories.NewMatchRepository(db).FindByPair(resume.ID, job.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	// The pair stays matchable after the failure.
	ok := newMatcher(t, db, &fakeLLM{response: validMatchJSON})
	_, err = ok.Match(context.Background(), user.ID, resume.ID, job.ID)
	assert.NoError(t, err)
}
