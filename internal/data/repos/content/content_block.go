package content

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

type ContentBlockRepo interface {
	Create(ctx context.Context, b *types.AiContentBlock) (*types.AiContentBlock, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.AiContentBlock, error)
	ListPublished(ctx context.Context, pageID uuid.UUID) ([]*types.AiContentBlock, error)
	// PublishExclusive moves the block to published and archives any other
	// published block on the same (page, hook) in the same transaction.
	PublishExclusive(ctx context.Context, id uuid.UUID) error
	AddCounters(ctx context.Context, id uuid.UUID, impressions, clicks int) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error)
}

type contentBlockRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentBlockRepo(db *gorm.DB, baseLog *logger.Logger) ContentBlockRepo {
	return &contentBlockRepo{db: db, log: baseLog.With("repo", "ContentBlockRepo")}
}

func (r *contentBlockRepo) Create(ctx context.Context, b *types.AiContentBlock) (*types.AiContentBlock, error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Status == "" {
		b.Status = types.BlockStatusDraft
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *contentBlockRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.AiContentBlock, error) {
	var b types.AiContentBlock
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, enginerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *contentBlockRepo) ListPublished(ctx context.Context, pageID uuid.UUID) ([]*types.AiContentBlock, error) {
	var out []*types.AiContentBlock
	err := r.db.WithContext(ctx).
		Where("page_id = ? AND status = ?", pageID, types.BlockStatusPublished).
		Order("hook ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentBlockRepo) PublishExclusive(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var block types.AiContentBlock
		err := tx.Where("id = ?", id).First(&block).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return enginerr.ErrNotFound
		}
		if err != nil {
			return err
		}
		if block.Status != types.BlockStatusDraft {
			return &enginerr.InvalidTransition{
				Entity: "ai_content_block",
				ID:     id.String(),
				From:   block.Status,
				To:     types.BlockStatusPublished,
			}
		}

		// archive the incumbent for this hook, if any
		if err := tx.Model(&types.AiContentBlock{}).
			Where("page_id = ? AND hook = ? AND status = ? AND id <> ?",
				block.PageID, block.Hook, types.BlockStatusPublished, id).
			Updates(map[string]interface{}{
				"status":      types.BlockStatusArchived,
				"archived_at": now,
				"updated_at":  now,
			}).Error; err != nil {
			return err
		}

		res := tx.Model(&types.AiContentBlock{}).
			Where("id = ? AND status = ?", id, types.BlockStatusDraft).
			Updates(map[string]interface{}{
				"status":       types.BlockStatusPublished,
				"published_at": now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &enginerr.ConcurrencyConflict{
				Entity:   "ai_content_block",
				ID:       id.String(),
				Expected: types.BlockStatusDraft,
			}
		}
		return nil
	})
}

// AddCounters applies drained impression/click counts. Fire-and-forget at the
// HTTP edge; by the time this runs we are on the batch path.
func (r *contentBlockRepo) AddCounters(ctx context.Context, id uuid.UUID, impressions, clicks int) error {
	if impressions <= 0 && clicks <= 0 {
		return nil
	}
	updates := map[string]interface{}{}
	if impressions > 0 {
		updates["impressions"] = gorm.Expr("impressions + ?", impressions)
	}
	if clicks > 0 {
		updates["click_throughs"] = gorm.Expr("click_throughs + ?", clicks)
	}
	return r.db.WithContext(ctx).Model(&types.AiContentBlock{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *contentBlockRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	if len(fromStatuses) == 0 {
		return false, nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&types.AiContentBlock{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
