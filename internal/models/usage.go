package models

import (
	"time"

	"github.com/google/uuid"
)

// FeatureKind classifies a usage event at write time. Monthly quota counts
// filter on this column; the free-text prompt is kept for audit only and is
// never used for classification.
type FeatureKind string

const (
	FeatureAnalysis FeatureKind = "analysis"
	FeatureMatch    FeatureKind = "match"
)

// AIInteraction is an immutable log row recording one AI invocation. Rows are
// only ever appended; every quota check recomputes from this log.
type AIInteraction struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID   `gorm:"type:uuid;not null;index:idx_interactions_user_time" json:"user_id"`
	FeatureKind FeatureKind `gorm:"type:text;not null" json:"feature_kind"`
	Prompt      string      `gorm:"type:text;not null" json:"prompt"`
	Response    string      `gorm:"type:text" json:"response"`
	Model       string      `gorm:"type:text;not null" json:"model"`
	TokensUsed  *int        `json:"tokens_used,omitempty"`
	CreatedAt   time.Time   `gorm:"index:idx_interactions_user_time" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (AIInteraction) TableName() string {
	return "ai_interactions"
}
