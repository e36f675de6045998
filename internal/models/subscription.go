package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription mirrors the billing provider's subscription lifecycle for a
// user. Only the billing webhook handler writes these rows; the rest of the
// service reads User.Plan which the webhook keeps in sync.
type Subscription struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Plan                 Plan       `gorm:"type:text;not null" json:"plan"`
	Status               string     `gorm:"type:text;not null" json:"status"`
	StripeCustomerID     *string    `gorm:"type:text" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string    `gorm:"type:text;index" json:"stripe_subscription_id,omitempty"`
	CurrentPeriodStart   *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
