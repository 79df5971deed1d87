package content

import (
	"time"

	"github.com/google/uuid"
)

const (
	BlockStatusDraft     = "draft"
	BlockStatusPublished = "published"
	BlockStatusArchived  = "archived"
)

// AiContentBlock is a generated HTML fragment tied to a page and a named hook
// (insertion context). Only one block per (page_id, hook) may be published at
// a time; publishing a new block archives the previous one in the same
// transaction.
type AiContentBlock struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PageID        uuid.UUID  `gorm:"type:uuid;column:page_id;not null;index:idx_block_page_hook" json:"page_id"`
	Hook          string     `gorm:"column:hook;not null;index:idx_block_page_hook" json:"hook"`
	BlockType     string     `gorm:"column:block_type;not null" json:"block_type"`
	ContentHTML   string     `gorm:"column:content_html;not null" json:"content_html"`
	Status        string     `gorm:"column:status;not null;index;default:'draft'" json:"status"`
	Impressions   int        `gorm:"column:impressions;not null;default:0" json:"impressions"`
	ClickThroughs int        `gorm:"column:click_throughs;not null;default:0" json:"click_throughs"`
	PublishedAt   *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	ArchivedAt    *time.Time `gorm:"column:archived_at" json:"archived_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (AiContentBlock) TableName() string { return "ai_content_block" }
