package repositories

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/resume-matcher/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Resume{},
		&models.Analysis{},
		&models.JobDescription{},
		&models.MatchResult{},
		&models.AIInteraction{},
		&models.Subscription{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		ID:    uuid.New(),
		Email: uuid.New().String() + "@example.com",
		Plan:  models.PlanFree,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedResume(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Resume {
	t.Helper()

	text := "parsed resume text"
	resume := &models.Resume{
		ID:         uuid.New(),
		UserID:     userID,
		FileURL:    "/uploads/resumes/test.pdf",
		FileName:   "test.pdf",
		ParsedText: &text,
	}
	require.NoError(t, db.Create(resume).Error)
	return resume
}

func seedJob(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.JobDescription {
	t.Helper()

	job := &models.JobDescription{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       "Backend Engineer",
		Description: "Build and operate Go services.",
		Skills:      models.StringList{"Go"},
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	first := &models.User{ID: uuid.New(), Email: "dup@example.com", Plan: models.PlanFree}
	require.NoError(t, repo.Create(first))

	second := &models.User{ID: uuid.New(), Email: "dup@example.com", Plan: models.PlanFree}
	err := repo.Create(second)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestAnalysisUniquePerResume(t *testing.T) {
	db := newTestDB(t)
	repo := NewResumeRepository(db)
	user := seedUser(t, db)
	resume := seedResume(t, db, user.ID)

	first := &models.Analysis{
		ID:       uuid.New(),
		ResumeID: resume.ID,
		Summary:  "first",
		Skills:   models.StringList{"Go"},
		Score:    70,
		AIModel:  "fake-model",
	}
	require.NoError(t, repo.CreateAnalysis(first))

	second := &models.Analysis{
		ID:       uuid.New(),
		ResumeID: resume.ID,
		Summary:  "second",
		Skills:   models.StringList{"Go"},
		Score:    80,
		AIModel:  "fake-model",
	}
	err := repo.CreateAnalysis(second)
	assert.True(t, errors.Is(err, ErrDuplicate))

	// The winner's row is still the one on record.
	stored, err := repo.FindAnalysisByResume(resume.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, first.ID, stored.ID)

	// Deleting it frees the slot for a new analysis.
	require.NoError(t, repo.DeleteAnalysis(first.ID))
	assert.NoError(t, repo.CreateAnalysis(second))
}

func TestMatchPairUniqueness(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	user := seedUser(t, db)
	resume := seedResume(t, db, user.ID)
	job := seedJob(t, db, user.ID)

	t.Run("unmatched pair reads as nil", func(t *testing.T) {
		match, err := repo.FindByPair(resume.ID, job.ID)
		require.NoError(t, err)
		assert.Nil(t, match)
	})

	first := &models.MatchResult{
		ID:               uuid.New(),
		ResumeID:         resume.ID,
		JobDescriptionID: job.ID,
		MatchScore:       88,
		AISummary:        "good fit",
	}
	require.NoError(t, repo.Create(first))

	t.Run("second insert for the pair is rejected", func(t *testing.T) {
		duplicate := &models.MatchResult{
			ID:               uuid.New(),
			ResumeID:         resume.ID,
			JobDescriptionID: job.ID,
			MatchScore:       90,
			AISummary:        "also good",
		}
		err := repo.Create(duplicate)
		assert.True(t, errors.Is(err, ErrDuplicate))
	})

	t.Run("different job is a new pair", func(t *testing.T) {
		otherJob := seedJob(t, db, user.ID)
		err := repo.Create(&models.MatchResult{
			ID:               uuid.New(),
			ResumeID:         resume.ID,
			JobDescriptionID: otherJob.ID,
			MatchScore:       55,
			AISummary:        "partial fit",
		})
		assert.NoError(t, err)
	})
}

func TestMatchOwnershipRunsThroughResume(t *testing.T) {
	db := newTestDB(t)
	repo := NewMatchRepository(db)
	owner := seedUser(t, db)
	stranger := seedUser(t, db)
	resume := seedResume(t, db, owner.ID)
	job := seedJob(t, db, owner.ID)

	match := &models.MatchResult{
		ID:               uuid.New(),
		ResumeID:         resume.ID,
		JobDescriptionID: job.ID,
		MatchScore:       88,
		AISummary:        "good fit",
	}
	require.NoError(t, repo.Create(match))

	found, err := repo.FindByIDForUser(match.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, match.ID, found.ID)

	_, err = repo.FindByIDForUser(match.ID, stranger.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestResumeDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	resumeRepo := NewResumeRepository(db)
	matchRepo := NewMatchRepository(db)
	user := seedUser(t, db)
	resume := seedResume(t, db, user.ID)
	job := seedJob(t, db, user.ID)

	require.NoError(t, resumeRepo.CreateAnalysis(&models.Analysis{
		ID:       uuid.New(),
		ResumeID: resume.ID,
		Summary:  "summary",
		Score:    70,
		AIModel:  "fake-model",
	}))
	require.NoError(t, matchRepo.Create(&models.MatchResult{
		ID:               uuid.New(),
		ResumeID:         resume.ID,
		JobDescriptionID: job.ID,
		MatchScore:       88,
		AISummary:        "good fit",
	}))

	require.NoError(t, resumeRepo.DeleteCascade(resume.ID))

	_, err := resumeRepo.FindByIDForUser(resume.ID, user.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	analysis, err := resumeRepo.FindAnalysisByResume(resume.ID)
	require.NoError(t, err)
	assert.Nil(t, analysis)

	match, err := matchRepo.FindByPair(resume.ID, job.ID)
	require.NoError(t, err)
	assert.Nil(t, match)

	// The job itself survives.
	_, err = NewJobRepository(db).FindByIDForUser(job.ID, user.ID)
	assert.NoError(t, err)
}

func TestSubscriptionUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	user := seedUser(t, db)

	stripeSubID := "sub_123"
	require.NoError(t, repo.Upsert(&models.Subscription{
		ID:                   uuid.New(),
		UserID:               user.ID,
		Plan:                 models.PlanPremium,
		Status:               "active",
		StripeSubscriptionID: &stripeSubID,
	}))

	// Replaying the webhook updates the row instead of adding a second one.
	require.NoError(t, repo.Upsert(&models.Subscription{
		ID:                   uuid.New(),
		UserID:               user.ID,
		Plan:                 models.PlanFree,
		Status:               "canceled",
		StripeSubscriptionID: &stripeSubID,
	}))

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	sub, err := repo.FindByUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.Plan)
	assert.Equal(t, "canceled", sub.Status)

	byStripe, err := repo.FindByStripeSubscription(stripeSubID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byStripe.ID)
}
