package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/models"
)

type JobRepository interface {
	Create(job *models.JobDescription) error
	FindByIDForUser(id, userID uuid.UUID) (*models.JobDescription, error)
	FindDetail(id, userID uuid.UUID) (*models.JobDescription, error)
	ListByUser(userID uuid.UUID, limit, offset int) ([]models.JobDescription, int64, error)
	CountByUser(userID uuid.UUID) (int64, error)
	Update(job *models.JobDescription) error
	DeleteCascade(id uuid.UUID) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Create implements JobRepository.
func (r *jobRepository) Create(job *models.JobDescription) error {
	if err := r.db.Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job description: %w", err)
	}
	return nil
}

// FindByIDForUser implements JobRepository.
func (r *jobRepository) FindByIDForUser(id, userID uuid.UUID) (*models.JobDescription, error) {
	var job models.JobDescription
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job description: %w", err)
	}
	return &job, nil
}

// FindDetail implements JobRepository, loading matches ordered by score.
func (r *jobRepository) FindDetail(id, userID uuid.UUID) (*models.JobDescription, error) {
	var job models.JobDescription
	err := r.db.
		Where("id = ? AND user_id = ?", id, userID).
		Preload("MatchResults", func(db *gorm.DB) *gorm.DB {
			return db.Order("match_score DESC")
		}).
		Preload("MatchResults.Resume").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job description: %w", err)
	}
	return &job, nil
}

// ListByUser implements JobRepository.
func (r *jobRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]models.JobDescription, int64, error) {
	var jobs []models.JobDescription
	var total int64

	if err := r.db.Model(&models.JobDescription{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count job descriptions: %w", err)
	}

	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list job descriptions: %w", err)
	}

	return jobs, total, nil
}

// CountByUser implements JobRepository. Backs the cumulative job quota.
func (r *jobRepository) CountByUser(userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.Model(&models.JobDescription{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count job descriptions: %w", err)
	}
	return count, nil
}

// Update implements JobRepository.
func (r *jobRepository) Update(job *models.JobDescription) error {
	if err := r.db.Save(job).Error; err != nil {
		return fmt.Errorf("failed to update job description: %w", err)
	}
	return nil
}

// DeleteCascade implements JobRepository.
func (r *jobRepository) DeleteCascade(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_description_id = ?", id).Delete(&models.MatchResult{}).Error; err != nil {
			return fmt.Errorf("failed to delete match results: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.JobDescription{}).Error; err != nil {
			return fmt.Errorf("failed to delete job description: %w", err)
		}
		return nil
	})
}
