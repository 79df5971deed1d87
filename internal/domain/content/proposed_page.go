package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ProposedPageStatusProposed = "proposed"
	ProposedPageStatusApproved = "approved"
	ProposedPageStatusRejected = "rejected"
	ProposedPageStatusCreated  = "created"
)

// ProposedPage is a candidate page that has not been materialized in the page
// store yet. Lifecycle is strictly forward; rejected and created are terminal.
type ProposedPage struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	KeywordID     uuid.UUID      `gorm:"type:uuid;column:keyword_id;not null;index" json:"keyword_id"`
	TargetKeyword string         `gorm:"column:target_keyword;not null" json:"target_keyword"`
	Title         string         `gorm:"column:title;not null" json:"title"`
	Slug          string         `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Outline       datatypes.JSON `gorm:"column:outline;type:jsonb" json:"outline"`
	DraftContent  string         `gorm:"column:draft_content" json:"draft_content,omitempty"`
	Cluster       string         `gorm:"column:cluster;index" json:"cluster,omitempty"`
	Status        string         `gorm:"column:status;not null;index;default:'proposed'" json:"status"`
	CreatedPageID *uuid.UUID     `gorm:"type:uuid;column:created_page_id" json:"created_page_id,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ProposedPage) TableName() string { return "proposed_page" }
