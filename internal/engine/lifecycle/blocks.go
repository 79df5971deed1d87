package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
)

// PublishBlock moves a draft block to published. Any other published block on
// the same (page, hook) is archived in the same transaction, so the
// one-published-block-per-hook invariant holds even under concurrent
// publishes.
func (m *Manager) PublishBlock(ctx context.Context, id uuid.UUID) (*types.AiContentBlock, error) {
	if err := m.blocks.PublishExclusive(ctx, id); err != nil {
		return nil, err
	}
	b, err := m.blocks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.log.Info("content block published",
		"block_id", id.String(),
		"page_id", b.PageID.String(),
		"hook", b.Hook)
	return b, nil
}

func (m *Manager) ArchiveBlock(ctx context.Context, id uuid.UUID) (*types.AiContentBlock, error) {
	b, err := m.blocks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	moved, err := m.blocks.UpdateStatusIf(ctx, id,
		[]string{types.BlockStatusPublished},
		map[string]interface{}{
			"status":      types.BlockStatusArchived,
			"archived_at": time.Now().UTC(),
		})
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, &enginerr.InvalidTransition{
			Entity: "ai_content_block",
			ID:     id.String(),
			From:   b.Status,
			To:     types.BlockStatusArchived,
		}
	}
	b.Status = types.BlockStatusArchived
	return b, nil
}
