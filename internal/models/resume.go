package models

import (
	"time"

	"github.com/google/uuid"
)

type Resume struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	FileURL    string    `gorm:"type:text;not null" json:"file_url"`
	FileName   string    `gorm:"type:text;not null" json:"file_name"`
	ParsedText *string   `gorm:"type:text" json:"parsed_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User         User          `gorm:"foreignKey:UserID" json:"-"`
	Analysis     *Analysis     `gorm:"foreignKey:ResumeID" json:"analysis,omitempty"`
	MatchResults []MatchResult `gorm:"foreignKey:ResumeID" json:"match_results,omitempty"`
}

func (Resume) TableName() string {
	return "resumes"
}

// Analysis is the AI-derived scoring of one resume. The unique index on
// ResumeID enforces the 1:1 invariant at the store, not just in the
// orchestrator's pre-check.
type Analysis struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ResumeID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"resume_id"`
	Summary    string     `gorm:"type:text;not null" json:"summary"`
	Skills     StringList `gorm:"type:text" json:"skills"`
	Experience StringList `gorm:"type:text" json:"experience"`
	Education  StringList `gorm:"type:text" json:"education"`
	Score      int        `gorm:"not null" json:"score"`
	AIModel    string     `gorm:"type:text;not null" json:"ai_model"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}
