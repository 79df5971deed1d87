package content

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

type OptimizationRunRepo interface {
	// StartRun inserts an in_progress row iff no other live run exists. A
	// live run whose heartbeat went stale (crashed process) is marked failed
	// and replaced. Returns ErrRunInProgress when a healthy run holds the
	// lock.
	StartRun(ctx context.Context, trigger string, staleAfter time.Duration) (*types.OptimizationRun, error)
	Heartbeat(ctx context.Context, id uuid.UUID) error
	Finalize(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.OptimizationRun, error)
	List(ctx context.Context, limit int) ([]*types.OptimizationRun, error)
}

type optimizationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOptimizationRunRepo(db *gorm.DB, baseLog *logger.Logger) OptimizationRunRepo {
	return &optimizationRunRepo{db: db, log: baseLog.With("repo", "OptimizationRunRepo")}
}

func (r *optimizationRunRepo) StartRun(ctx context.Context, trigger string, staleAfter time.Duration) (*types.OptimizationRun, error) {
	now := time.Now().UTC()
	staleCutoff := now.Add(-staleAfter)

	var run *types.OptimizationRun
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var live []types.OptimizationRun
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", types.RunStatusInProgress).
			Find(&live).Error
		if err != nil {
			return err
		}

		for _, l := range live {
			if l.HeartbeatAt != nil && l.HeartbeatAt.After(staleCutoff) {
				return enginerr.ErrRunInProgress
			}
			if l.HeartbeatAt == nil && l.StartedAt.After(staleCutoff) {
				return enginerr.ErrRunInProgress
			}
			// crashed holder, release the lock
			if err := tx.Model(&types.OptimizationRun{}).
				Where("id = ? AND status = ?", l.ID, types.RunStatusInProgress).
				Updates(map[string]interface{}{
					"status":      types.RunStatusFailed,
					"finished_at": now,
					"updated_at":  now,
				}).Error; err != nil {
				return err
			}
			r.log.Warn("released stale optimization run lock", "run_id", l.ID.String())
		}

		run = &types.OptimizationRun{
			ID:          uuid.New(),
			Trigger:     trigger,
			Status:      types.RunStatusInProgress,
			StartedAt:   now,
			HeartbeatAt: &now,
			Errors:      []byte("[]"),
		}
		return tx.Create(run).Error
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *optimizationRunRepo) Heartbeat(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&types.OptimizationRun{}).
		Where("id = ? AND status = ?", id, types.RunStatusInProgress).
		Updates(map[string]interface{}{
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}

func (r *optimizationRunRepo) Finalize(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	now := time.Now().UTC()
	updates["finished_at"] = now
	updates["updated_at"] = now
	res := r.db.WithContext(ctx).Model(&types.OptimizationRun{}).
		Where("id = ? AND status = ?", id, types.RunStatusInProgress).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &enginerr.ConcurrencyConflict{
			Entity:   "optimization_run",
			ID:       id.String(),
			Expected: types.RunStatusInProgress,
		}
	}
	return nil
}

func (r *optimizationRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.OptimizationRun, error) {
	var run types.OptimizationRun
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, enginerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *optimizationRunRepo) List(ctx context.Context, limit int) ([]*types.OptimizationRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.OptimizationRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
