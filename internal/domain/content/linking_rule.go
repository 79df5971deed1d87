package content

import (
	"time"

	"github.com/google/uuid"
)

const (
	RuleTypeKeywordMatch = "keyword_match"
	RuleTypeClusterBased = "cluster_based"
	RuleTypePageType     = "page_type"
	RuleTypeManual       = "manual"
)

const (
	CtaPositionAfterIntro = "after_intro"
	CtaPositionMidContent = "mid_content"
	CtaPositionBeforeFAQ  = "before_faq"
	CtaPositionFooter     = "footer"
	CtaPositionSidebar    = "sidebar"
)

// LinkingRule is a declarative trigger -> target mapping used to mechanically
// insert internal links. Rules are CRUD-managed outside the engine; the engine
// only reads active rules.
type LinkingRule struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RuleType       string    `gorm:"column:rule_type;not null;default:'keyword_match'" json:"rule_type"`
	TriggerPattern string    `gorm:"column:trigger_pattern;not null" json:"trigger_pattern"`
	TargetPagePath string    `gorm:"column:target_page_path;not null;index" json:"target_page_path"`
	AnchorText     string    `gorm:"column:anchor_text" json:"anchor_text,omitempty"`
	Priority       int       `gorm:"column:priority;not null;default:100" json:"priority"`
	MaxOccurrences int       `gorm:"column:max_occurrences;not null;default:1" json:"max_occurrences"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (LinkingRule) TableName() string { return "linking_rule" }

// CtaTemplate has the LinkingRule shape but inserts a call-to-action block at
// a structural position instead of linking inline text.
type CtaTemplate struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RuleType       string    `gorm:"column:rule_type;not null;default:'page_type'" json:"rule_type"`
	TriggerPattern string    `gorm:"column:trigger_pattern" json:"trigger_pattern,omitempty"`
	TargetPagePath string    `gorm:"column:target_page_path;not null" json:"target_page_path"`
	CtaHTML        string    `gorm:"column:cta_html;not null" json:"cta_html"`
	Position       string    `gorm:"column:position;not null;default:'mid_content'" json:"position"`
	Priority       int       `gorm:"column:priority;not null;default:100" json:"priority"`
	MaxOccurrences int       `gorm:"column:max_occurrences;not null;default:1" json:"max_occurrences"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CtaTemplate) TableName() string { return "cta_template" }
