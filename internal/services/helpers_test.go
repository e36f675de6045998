package services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
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

func seedUser(t *testing.T, db *gorm.DB, plan models.Plan) *models.User {
	t.Helper()

	user := &models.User{
		ID:    uuid.New(),
		Email: uuid.New().String() + "@example.com",
		Name:  "Test User",
		Plan:  plan,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedResume(t *testing.T, db *gorm.DB, userID uuid.UUID, parsedText string) *models.Resume {
	t.Helper()

	resume := &models.Resume{
		ID:       uuid.New(),
		UserID:   userID,
		FileURL:  "/uploads/resumes/test.pdf",
		FileName: "test.pdf",
	}
	if parsedText != "" {
		resume.ParsedText = &parsedText
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
		CompanyName: "Acme Corp",
		Description: "Build and operate Go services at scale.",
		Skills:      models.StringList{"Go", "PostgreSQL", "Docker"},
	}
	require.NoError(t, db.Create(job).Error)
	return job
}

// fakeLLM returns a canned completion and counts invocations, so tests can
// assert that gating short-circuits before the model is called.
type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Complete(_ context.Context, _, _ string) (*Completion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	tokens := 128
	return &Completion{Text: f.response, TokensUsed: &tokens}, nil
}

func (f *fakeLLM) ModelName() string {
	return "fake-model"
}
