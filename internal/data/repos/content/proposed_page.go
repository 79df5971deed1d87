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

type ProposedPageRepo interface {
	Create(ctx context.Context, p *types.ProposedPage) (*types.ProposedPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.ProposedPage, error)
	List(ctx context.Context, status string, limit int) ([]*types.ProposedPage, error)
	// ExistsOpenForKeyword reports whether a proposed or approved row already
	// targets the keyword, so a re-run does not stack duplicates.
	ExistsOpenForKeyword(ctx context.Context, keywordID uuid.UUID) (bool, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
	UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error)
}

type proposedPageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProposedPageRepo(db *gorm.DB, baseLog *logger.Logger) ProposedPageRepo {
	return &proposedPageRepo{db: db, log: baseLog.With("repo", "ProposedPageRepo")}
}

func (r *proposedPageRepo) Create(ctx context.Context, p *types.ProposedPage) (*types.ProposedPage, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = types.ProposedPageStatusProposed
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *proposedPageRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.ProposedPage, error) {
	var p types.ProposedPage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, enginerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proposedPageRepo) List(ctx context.Context, status string, limit int) ([]*types.ProposedPage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&types.ProposedPage{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []*types.ProposedPage
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *proposedPageRepo) ExistsOpenForKeyword(ctx context.Context, keywordID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&types.ProposedPage{}).
		Where("keyword_id = ? AND status IN ?", keywordID,
			[]string{types.ProposedPageStatusProposed, types.ProposedPageStatusApproved}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *proposedPageRepo) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&types.ProposedPage{}).
		Where("slug = ?", slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *proposedPageRepo) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	if len(fromStatuses) == 0 {
		return false, nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&types.ProposedPage{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
