package models

import (
	"time"

	"github.com/google/uuid"
)

type JobDescription struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string     `gorm:"type:text;not null" json:"title"`
	CompanyName string     `gorm:"type:text" json:"company_name"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Skills      StringList `gorm:"type:text" json:"skills"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User         User          `gorm:"foreignKey:UserID" json:"-"`
	MatchResults []MatchResult `gorm:"foreignKey:JobDescriptionID" json:"match_results,omitempty"`
}

func (JobDescription) TableName() string {
	return "job_descriptions"
}
