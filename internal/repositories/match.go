package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/models"
)

// MatchFilter narrows the match listing. Zero values mean "no filter".
type MatchFilter struct {
	ResumeID uuid.UUID
	JobID    uuid.UUID
	MinScore int
	HasMin   bool
}

type MatchRepository interface {
	Create(match *models.MatchResult) error
	FindByPair(resumeID, jobID uuid.UUID) (*models.MatchResult, error)
	FindByIDForUser(id, userID uuid.UUID) (*models.MatchResult, error)
	ListByUser(userID uuid.UUID, filter MatchFilter, limit, offset int) ([]models.MatchResult, int64, error)
	Delete(id uuid.UUID) error
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

// Create implements MatchRepository. The composite unique index on
// (resume_id, job_description_id) makes the second concurrent writer fail
// here deterministically.
func (r *matchRepository) Create(match *models.MatchResult) error {
	if err := r.db.Create(match).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create match result: %w", err)
	}
	return nil
}

// FindByPair implements MatchRepository. Returns (nil, nil) when the pair is
// unmatched.
func (r *matchRepository) FindByPair(resumeID, jobID uuid.UUID) (*models.MatchResult, error) {
	var match models.MatchResult
	err := r.db.
		Where("resume_id = ? AND job_description_id = ?", resumeID, jobID).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find match result: %w", err)
	}
	return &match, nil
}

// FindByIDForUser implements MatchRepository. Ownership runs through the
// resume's owner.
func (r *matchRepository) FindByIDForUser(id, userID uuid.UUID) (*models.MatchResult, error) {
	var match models.MatchResult
	err := r.db.
		Joins("JOIN resumes ON resumes.id = match_results.resume_id").
		Where("match_results.id = ? AND resumes.user_id = ?", id, userID).
		Preload("Resume").
		Preload("JobDescription").
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find match result: %w", err)
	}
	return &match, nil
}

// ListByUser implements MatchRepository.
func (r *matchRepository) ListByUser(userID uuid.UUID, filter MatchFilter, limit, offset int) ([]models.MatchResult, int64, error) {
	query := r.db.Model(&models.MatchResult{}).
		Joins("JOIN resumes ON resumes.id = match_results.resume_id").
		Where("resumes.user_id = ?", userID)

	if filter.ResumeID != uuid.Nil {
		query = query.Where("match_results.resume_id = ?", filter.ResumeID)
	}
	if filter.JobID != uuid.Nil {
		query = query.Where("match_results.job_description_id = ?", filter.JobID)
	}
	if filter.HasMin {
		query = query.Where("match_results.match_score >= ?", filter.MinScore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count match results: %w", err)
	}

	var matches []models.MatchResult
	err := query.
		Preload("Resume").
		Preload("JobDescription").
		Order("match_results.match_score DESC").
		Limit(limit).
		Offset(offset).
		Find(&matches).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list match results: %w", err)
	}

	return matches, total, nil
}

// Delete implements MatchRepository.
func (r *matchRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.MatchResult{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete match result: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
