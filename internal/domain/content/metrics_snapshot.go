package content

import (
	"time"

	"github.com/google/uuid"
)

// MetricsSnapshot is one immutable per-page search-performance window pulled
// from the external analytics source. Append-only; superseded windows are kept
// for trend analysis.
type MetricsSnapshot struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PageID      uuid.UUID `gorm:"type:uuid;column:page_id;not null;index:idx_snapshot_page_window" json:"page_id"`
	WindowStart time.Time `gorm:"column:window_start;not null" json:"window_start"`
	WindowEnd   time.Time `gorm:"column:window_end;not null;index:idx_snapshot_page_window" json:"window_end"`
	Impressions int       `gorm:"column:impressions;not null;default:0" json:"impressions"`
	Clicks      int       `gorm:"column:clicks;not null;default:0" json:"clicks"`
	CTR         float64   `gorm:"column:ctr;not null;default:0" json:"ctr"`
	AvgPosition float64   `gorm:"column:avg_position;not null;default:0" json:"avg_position"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (MetricsSnapshot) TableName() string { return "metrics_snapshot" }
