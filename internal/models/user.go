package models

import (
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanPremium Plan = "PREMIUM"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"type:text" json:"name"`
	PasswordHash string    `gorm:"type:text" json:"-"`
	Plan         Plan      `gorm:"type:text;not null;default:'FREE'" json:"plan"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
