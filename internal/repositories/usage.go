package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-matcher/internal/models"
)

type UsageRepository interface {
	Append(event *models.AIInteraction) error
	CountByKindSince(userID uuid.UUID, kind models.FeatureKind, since time.Time) (int64, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// Append implements UsageRepository. Events are append-only; there is no
// update or delete path.
func (r *usageRepository) Append(event *models.AIInteraction) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to append usage event: %w", err)
	}
	return nil
}

// CountByKindSince implements UsageRepository. Counts are always recomputed
// from the log so no counter can drift from it.
func (r *usageRepository) CountByKindSince(userID uuid.UUID, kind models.FeatureKind, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.AIInteraction{}).
		Where("user_id = ? AND feature_kind = ? AND created_at >= ?", userID, kind, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count usage events: %w", err)
	}
	return count, nil
}
