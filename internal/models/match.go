package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchResult records the AI-derived compatibility between one resume and one
// job description. The composite unique index serializes concurrent duplicate
// requests: the second writer fails at insert instead of creating a second row.
type MatchResult struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ResumeID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair" json:"resume_id"`
	JobDescriptionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair" json:"job_description_id"`
	MatchScore       int        `gorm:"not null" json:"match_score"`
	MissingSkills    StringList `gorm:"type:text" json:"missing_skills"`
	SuggestedEdits   StringList `gorm:"type:text" json:"suggested_edits"`
	AISummary        string     `gorm:"type:text;not null" json:"ai_summary"`
	CreatedAt        time.Time  `json:"created_at"`

	Resume         Resume         `gorm:"foreignKey:ResumeID" json:"-"`
	JobDescription JobDescription `gorm:"foreignKey:JobDescriptionID" json:"-"`
}

func (MatchResult) TableName() string {
	return "match_results"
}
