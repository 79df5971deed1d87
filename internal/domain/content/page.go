package content

import (
	"time"

	"github.com/google/uuid"
)

// Page is the slice of the page record the engine reads and writes. Page
// storage and rendering belong to the CMS proper; the engine touches pages
// only through the pagestore interface, but the row shape lives here so both
// sides share one model.
type Page struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Path              string    `gorm:"column:path;not null;uniqueIndex" json:"path"`
	PageType          string    `gorm:"column:page_type;index" json:"page_type,omitempty"`
	Cluster           string    `gorm:"column:cluster;index" json:"cluster,omitempty"`
	Title             string    `gorm:"column:title;not null" json:"title"`
	Summary           string    `gorm:"column:summary" json:"summary,omitempty"`
	SEOTitle          string    `gorm:"column:seo_title" json:"seo_title,omitempty"`
	SEODescription    string    `gorm:"column:seo_description" json:"seo_description,omitempty"`
	BodyHTML          string    `gorm:"column:body_html" json:"body_html,omitempty"`
	HeroHTML          string    `gorm:"column:hero_html" json:"hero_html,omitempty"`
	WordCount         int       `gorm:"column:word_count;not null;default:0" json:"word_count"`
	InternalLinkCount int       `gorm:"column:internal_link_count;not null;default:0" json:"internal_link_count"`
	ContentUpdatedAt  *time.Time `gorm:"column:content_updated_at" json:"content_updated_at,omitempty"`
	CreatedAt         time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Page) TableName() string { return "page" }
