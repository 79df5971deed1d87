package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunTriggerManual    = "manual"
	RunTriggerScheduled = "scheduled"
)

const (
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
	RunStatusCancelled  = "cancelled"
	RunStatusFailed     = "failed"
)

// MaxRunErrors bounds the error list persisted on a run.
const MaxRunErrors = 50

// OptimizationRun is the append-only audit record of one scheduler pass. The
// in_progress row doubles as the cross-instance run lock: a second trigger is
// rejected while a live row exists with a fresh heartbeat.
type OptimizationRun struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Trigger            string         `gorm:"column:trigger;not null" json:"trigger"`
	Status             string         `gorm:"column:status;not null;index;default:'in_progress'" json:"status"`
	StartedAt          time.Time      `gorm:"column:started_at;not null;default:now()" json:"started_at"`
	FinishedAt         *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
	HeartbeatAt        *time.Time     `gorm:"column:heartbeat_at;index" json:"heartbeat_at,omitempty"`
	PagesScored        int            `gorm:"column:pages_scored;not null;default:0" json:"pages_scored"`
	SuggestionsCreated int            `gorm:"column:suggestions_created;not null;default:0" json:"suggestions_created"`
	LinksApplied       int            `gorm:"column:links_applied;not null;default:0" json:"links_applied"`
	BlocksGenerated    int            `gorm:"column:blocks_generated;not null;default:0" json:"blocks_generated"`
	PagesProposed      int            `gorm:"column:pages_proposed;not null;default:0" json:"pages_proposed"`
	ErrorCount         int            `gorm:"column:error_count;not null;default:0" json:"error_count"`
	Errors             datatypes.JSON `gorm:"column:errors;type:jsonb" json:"errors"`
	CreatedAt          time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (OptimizationRun) TableName() string { return "optimization_run" }

// RunError is one per-item failure captured during a pass.
type RunError struct {
	Step   string `json:"step"`
	Target string `json:"target,omitempty"`
	Error  string `json:"error"`
}
