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

type KeywordRepo interface {
	Create(ctx context.Context, keywords []*types.Keyword) ([]*types.Keyword, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Keyword, error)
	ListActive(ctx context.Context) ([]*types.Keyword, error)
	ListServed(ctx context.Context) ([]*types.Keyword, error)
	ListUnserved(ctx context.Context) ([]*types.Keyword, error)
	ListByCluster(ctx context.Context, cluster string) ([]*types.Keyword, error)
	TopForPage(ctx context.Context, pageID uuid.UUID) (*types.Keyword, error)
	MarkAnalyzed(ctx context.Context, ids []uuid.UUID, at time.Time) error
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type keywordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKeywordRepo(db *gorm.DB, baseLog *logger.Logger) KeywordRepo {
	return &keywordRepo{db: db, log: baseLog.With("repo", "KeywordRepo")}
}

func (r *keywordRepo) Create(ctx context.Context, keywords []*types.Keyword) ([]*types.Keyword, error) {
	if len(keywords) == 0 {
		return []*types.Keyword{}, nil
	}
	if err := r.db.WithContext(ctx).Create(&keywords).Error; err != nil {
		return nil, err
	}
	return keywords, nil
}

func (r *keywordRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Keyword, error) {
	var kw types.Keyword
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&kw).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, enginerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

// ListActive returns keywords still worth scoring: anything not yet published
// or rejected.
func (r *keywordRepo) ListActive(ctx context.Context) ([]*types.Keyword, error) {
	var out []*types.Keyword
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{types.KeywordStatusPublished, types.KeywordStatusRejected}).
		Order("phrase ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *keywordRepo) ListServed(ctx context.Context) ([]*types.Keyword, error) {
	var out []*types.Keyword
	err := r.db.WithContext(ctx).
		Where("page_id IS NOT NULL").
		Where("status NOT IN ?", []string{types.KeywordStatusRejected}).
		Order("phrase ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *keywordRepo) ListUnserved(ctx context.Context) ([]*types.Keyword, error) {
	var out []*types.Keyword
	err := r.db.WithContext(ctx).
		Where("page_id IS NULL").
		Where("status NOT IN ?", []string{types.KeywordStatusPublished, types.KeywordStatusRejected}).
		Order("phrase ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *keywordRepo) ListByCluster(ctx context.Context, cluster string) ([]*types.Keyword, error) {
	var out []*types.Keyword
	if cluster == "" {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where("cluster = ?", cluster).
		Order("volume_estimate DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TopForPage returns the highest-relevance keyword served by a page, used by
// the heuristic SEO suggestions. nil when the page serves no keyword.
func (r *keywordRepo) TopForPage(ctx context.Context, pageID uuid.UUID) (*types.Keyword, error) {
	var kw types.Keyword
	err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		Order("relevance_score DESC").
		Limit(1).
		Find(&kw).Error
	if err != nil {
		return nil, err
	}
	if kw.ID == uuid.Nil {
		return nil, nil
	}
	return &kw, nil
}

func (r *keywordRepo) MarkAnalyzed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&types.Keyword{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"last_analyzed_at": at,
			"updated_at":       at,
		}).Error
}

func (r *keywordRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&types.Keyword{}).
		Where("id = ?", id).
		Updates(updates).Error
}
