package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

type MetricsSnapshotRepo interface {
	Create(ctx context.Context, snaps []*types.MetricsSnapshot) ([]*types.MetricsSnapshot, error)
	LatestForPage(ctx context.Context, pageID uuid.UUID) (*types.MetricsSnapshot, error)
	RecentForPage(ctx context.Context, pageID uuid.UUID, limit int) ([]*types.MetricsSnapshot, error)
}

type metricsSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetricsSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) MetricsSnapshotRepo {
	return &metricsSnapshotRepo{db: db, log: baseLog.With("repo", "MetricsSnapshotRepo")}
}

// Create appends snapshots. Rows are immutable once written; there is no
// update path on purpose.
func (r *metricsSnapshotRepo) Create(ctx context.Context, snaps []*types.MetricsSnapshot) ([]*types.MetricsSnapshot, error) {
	if len(snaps) == 0 {
		return []*types.MetricsSnapshot{}, nil
	}
	if err := r.db.WithContext(ctx).Create(&snaps).Error; err != nil {
		return nil, err
	}
	return snaps, nil
}

func (r *metricsSnapshotRepo) LatestForPage(ctx context.Context, pageID uuid.UUID) (*types.MetricsSnapshot, error) {
	var snap types.MetricsSnapshot
	err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("window_end DESC").
		Limit(1).
		Find(&snap).Error
	if err != nil {
		return nil, err
	}
	if snap.ID == uuid.Nil {
		return nil, nil
	}
	return &snap, nil
}

func (r *metricsSnapshotRepo) RecentForPage(ctx context.Context, pageID uuid.UUID, limit int) ([]*types.MetricsSnapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []*types.MetricsSnapshot
	err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("window_end DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
