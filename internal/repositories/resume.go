package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/models"
)

type ResumeRepository interface {
	Create(resume *models.Resume) error
	FindByIDForUser(id, userID uuid.UUID) (*models.Resume, error)
	FindDetail(id, userID uuid.UUID) (*models.Resume, error)
	ListByUser(userID uuid.UUID, limit, offset int) ([]models.Resume, int64, error)
	CountByUser(userID uuid.UUID) (int64, error)
	DeleteCascade(id uuid.UUID) error

	CreateAnalysis(analysis *models.Analysis) error
	FindAnalysisByResume(resumeID uuid.UUID) (*models.Analysis, error)
	DeleteAnalysis(id uuid.UUID) error
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(resume *models.Resume) error {
	if err := r.db.Create(resume).Error; err != nil {
		return fmt.Errorf("failed to create resume: %w", err)
	}
	return nil
}

// FindByIDForUser implements ResumeRepository. Ownership is part of the
// lookup so a foreign resume is indistinguishable from a missing one.
func (r *resumeRepository) FindByIDForUser(id, userID uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	err := r.db.
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Analysis").
		First(&resume).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &resume, nil
}

// FindDetail implements ResumeRepository, loading the analysis and match
// results for the detail view.
func (r *resumeRepository) FindDetail(id, userID uuid.UUID) (*models.Resume, error) {
	var resume models.Resume
	err := r.db.
		Where("id = ? AND user_id = ?", id, userID).
		Preload("Analysis").
		Preload("MatchResults", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("MatchResults.JobDescription").
		First(&resume).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &resume, nil
}

// ListByUser implements ResumeRepository.
func (r *resumeRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]models.Resume, int64, error) {
	var resumes []models.Resume
	var total int64

	if err := r.db.Model(&models.Resume{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count resumes: %w", err)
	}

	err := r.db.
		Where("user_id = ?", userID).
		Preload("Analysis").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&resumes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list resumes: %w", err)
	}

	return resumes, total, nil
}

// CountByUser implements ResumeRepository. Backs the cumulative resume quota.
func (r *resumeRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Resume{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count resumes: %w", err)
	}
	return count, nil
}

// DeleteCascade implements ResumeRepository. Match results and the analysis
// go in the same transaction as the resume so a failure leaves everything in
// place.
func (r *resumeRepository) DeleteCascade(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resume_id = ?", id).Delete(&models.MatchResult{}).Error; err != nil {
			return fmt.Errorf("failed to delete match results: %w", err)
		}
		if err := tx.Where("resume_id = ?", id).Delete(&models.Analysis{}).Error; err != nil {
			return fmt.Errorf("failed to delete analysis: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Resume{}).Error; err != nil {
			return fmt.Errorf("failed to delete resume: %w", err)
		}
		return nil
	})
}

// CreateAnalysis implements ResumeRepository. The unique index on resume_id
// rejects a second analysis for the same resume.
func (r *resumeRepository) CreateAnalysis(analysis *models.Analysis) error {
	if err := r.db.Create(analysis).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// FindAnalysisByResume implements ResumeRepository. Returns (nil, nil) when
// no analysis exists so precondition checks don't have to treat absence as an
// error.
func (r *resumeRepository) FindAnalysisByResume(resumeID uuid.UUID) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.Where("resume_id = ?", resumeID).First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &analysis, nil
}

// DeleteAnalysis implements ResumeRepository.
func (r *resumeRepository) DeleteAnalysis(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Analysis{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
