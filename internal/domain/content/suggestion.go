package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EnhancementTitle          = "title"
	EnhancementSummary        = "summary"
	EnhancementSEOTitle       = "seo_title"
	EnhancementSEODescription = "seo_description"
	EnhancementHeroContent    = "hero_content"
	EnhancementSectionContent = "section_content"
	EnhancementFAQ            = "faq"
	EnhancementCTA            = "cta"
	EnhancementImagePrompt    = "image_prompt"
	EnhancementInternalLink   = "internal_link"
	EnhancementTag            = "tag"
	EnhancementKeyword        = "keyword"
)

const (
	SuggestionStatusPending  = "pending"
	SuggestionStatusAccepted = "accepted"
	SuggestionStatusRejected = "rejected"
	SuggestionStatusApplied  = "applied"
)

// Suggestion is a single proposed edit to one field of one page. At most one
// pending row may exist per (page_id, enhancement_type, field_name) slot;
// regeneration updates the pending row in place.
type Suggestion struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PageID          uuid.UUID      `gorm:"type:uuid;column:page_id;not null;index" json:"page_id"`
	EnhancementType string         `gorm:"column:enhancement_type;not null;index" json:"enhancement_type"`
	FieldName       string         `gorm:"column:field_name;not null;default:''" json:"field_name,omitempty"`
	CurrentValue    string         `gorm:"column:current_value" json:"current_value,omitempty"`
	SuggestedValue  string         `gorm:"column:suggested_value;not null" json:"suggested_value"`
	Confidence      int            `gorm:"column:confidence;not null;default:0" json:"confidence"`
	Status          string         `gorm:"column:status;not null;index;default:'pending'" json:"status"`
	Provenance      datatypes.JSON `gorm:"column:provenance;type:jsonb" json:"provenance,omitempty"`
	AppliedAt       *time.Time     `gorm:"column:applied_at" json:"applied_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Suggestion) TableName() string { return "suggestion" }

// Provenance records where a suggested value came from, for the review UI.
type Provenance struct {
	SourceDocument string `json:"source_document,omitempty"`
	AIModel        string `json:"ai_model,omitempty"`
	Prompt         string `json:"prompt,omitempty"`
}
