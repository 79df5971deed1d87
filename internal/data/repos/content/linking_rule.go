package content

import (
	"context"

	"gorm.io/gorm"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

// Rules and CTA templates are CRUD-managed by the admin surface outside the
// engine; these repos are read-only on purpose. The scheduler snapshots them
// at run start so the whole pass sees one consistent rule view.

type LinkingRuleRepo interface {
	ListActive(ctx context.Context) ([]types.LinkingRule, error)
}

type CtaTemplateRepo interface {
	ListActive(ctx context.Context) ([]types.CtaTemplate, error)
}

type linkingRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLinkingRuleRepo(db *gorm.DB, baseLog *logger.Logger) LinkingRuleRepo {
	return &linkingRuleRepo{db: db, log: baseLog.With("repo", "LinkingRuleRepo")}
}

func (r *linkingRuleRepo) ListActive(ctx context.Context) ([]types.LinkingRule, error) {
	var out []types.LinkingRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority ASC, created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

type ctaTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCtaTemplateRepo(db *gorm.DB, baseLog *logger.Logger) CtaTemplateRepo {
	return &ctaTemplateRepo{db: db, log: baseLog.With("repo", "CtaTemplateRepo")}
}

func (r *ctaTemplateRepo) ListActive(ctx context.Context) ([]types.CtaTemplate, error) {
	var out []types.CtaTemplate
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority ASC, created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
