package content

import (
	"time"

	"github.com/google/uuid"
)

const (
	IntentInformational = "informational"
	IntentCommercial    = "commercial"
	IntentNavigational  = "navigational"
	IntentTransactional = "transactional"
)

const (
	KeywordStatusIdea       = "idea"
	KeywordStatusAnalyzing  = "analyzing"
	KeywordStatusPlanned    = "planned"
	KeywordStatusInProgress = "in_progress"
	KeywordStatusPublished  = "published"
	KeywordStatusRejected   = "rejected"
)

// Keyword is a search phrase the site may want to serve. Rows are never
// deleted, only moved to a terminal status.
type Keyword struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Phrase          string     `gorm:"column:phrase;not null;uniqueIndex" json:"phrase"`
	SearchIntent    string     `gorm:"column:search_intent;not null;default:'informational'" json:"search_intent"`
	DifficultyScore int        `gorm:"column:difficulty_score;not null;default:0" json:"difficulty_score"`
	VolumeEstimate  int        `gorm:"column:volume_estimate;not null;default:0" json:"volume_estimate"`
	RelevanceScore  int        `gorm:"column:relevance_score;not null;default:0" json:"relevance_score"`
	Status          string     `gorm:"column:status;not null;index;default:'idea'" json:"status"`
	Cluster         string     `gorm:"column:cluster;index" json:"cluster,omitempty"`
	PageID          *uuid.UUID `gorm:"type:uuid;column:page_id;index" json:"page_id,omitempty"`
	LastAnalyzedAt  *time.Time `gorm:"column:last_analyzed_at" json:"last_analyzed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Keyword) TableName() string { return "keyword" }

// Served reports whether a page already targets this keyword.
func (k *Keyword) Served() bool { return k.PageID != nil && *k.PageID != uuid.Nil }
