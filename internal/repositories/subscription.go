package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-matcher/internal/models"
)

type SubscriptionRepository interface {
	Upsert(sub *models.Subscription) error
	FindByUser(userID uuid.UUID) (*models.Subscription, error)
	FindByStripeSubscription(stripeSubID string) (*models.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Upsert implements SubscriptionRepository. One subscription row per user;
// webhook events replay safely.
func (r *subscriptionRepository) Upsert(sub *models.Subscription) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan", "status", "stripe_customer_id", "stripe_subscription_id",
			"current_period_start", "current_period_end", "updated_at",
		}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// FindByUser implements SubscriptionRepository.
func (r *subscriptionRepository) FindByUser(userID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return &sub, nil
}

// FindByStripeSubscription implements SubscriptionRepository.
func (r *subscriptionRepository) FindByStripeSubscription(stripeSubID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("stripe_subscription_id = ?", stripeSubID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	return &sub, nil
}
