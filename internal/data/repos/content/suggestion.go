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

type SuggestionRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*types.Suggestion, error)
	List(ctx context.Context, status string, pageID *uuid.UUID, limit int) ([]*types.Suggestion, error)
	FindPendingSlot(ctx context.Context, pageID uuid.UUID, enhancementType, fieldName string) (*types.Suggestion, error)
	// UpsertPending enforces the one-pending-per-slot invariant: an existing
	// pending row for (page, type, field) is refreshed in place, otherwise a
	// new row is inserted. Returns the live row.
	UpsertPending(ctx context.Context, s *types.Suggestion) (*types.Suggestion, error)
	// UpdateStatusIf is the optimistic transition primitive: the update only
	// lands while the row is still in one of fromStatuses. false means zero
	// rows moved.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error)
}

type suggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	return &suggestionRepo{db: db, log: baseLog.With("repo", "SuggestionRepo")}
}

func (r *suggestionRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Suggestion, error) {
	var s types.Suggestion
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, enginerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *suggestionRepo) List(ctx context.Context, status string, pageID *uuid.UUID, limit int) ([]*types.Suggestion, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&types.Suggestion{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if pageID != nil && *pageID != uuid.Nil {
		q = q.Where("page_id = ?", *pageID)
	}
	var out []*types.Suggestion
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *suggestionRepo) FindPendingSlot(ctx context.Context, pageID uuid.UUID, enhancementType, fieldName string) (*types.Suggestion, error) {
	var s types.Suggestion
	err := r.db.WithContext(ctx).
		Where("page_id = ? AND enhancement_type = ? AND field_name = ? AND status = ?",
			pageID, enhancementType, fieldName, types.SuggestionStatusPending).
		Limit(1).
		Find(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		return nil, nil
	}
	return &s, nil
}

func (r *suggestionRepo) UpsertPending(ctx context.Context, s *types.Suggestion) (*types.Suggestion, error) {
	now := time.Now().UTC()
	var out *types.Suggestion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing types.Suggestion
		err := tx.Where("page_id = ? AND enhancement_type = ? AND field_name = ? AND status = ?",
			s.PageID, s.EnhancementType, s.FieldName, types.SuggestionStatusPending).
			Limit(1).
			Find(&existing).Error
		if err != nil {
			return err
		}
		if existing.ID != uuid.Nil {
			updates := map[string]interface{}{
				"suggested_value": s.SuggestedValue,
				"current_value":   s.CurrentValue,
				"confidence":      s.Confidence,
				"updated_at":      now,
			}
			if len(s.Provenance) > 0 {
				updates["provenance"] = s.Provenance
			}
			if err := tx.Model(&types.Suggestion{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return err
			}
			existing.SuggestedValue = s.SuggestedValue
			existing.CurrentValue = s.CurrentValue
			existing.Confidence = s.Confidence
			existing.UpdatedAt = now
			out = &existing
			return nil
		}

		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.Status = types.SuggestionStatusPending
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *suggestionRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	if len(fromStatuses) == 0 {
		return false, nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&types.Suggestion{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
