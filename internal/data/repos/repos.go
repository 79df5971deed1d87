package repos

import (
	"gorm.io/gorm"

	"github.com/atiati82/AI-CMS-sub002/internal/data/repos/content"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

type KeywordRepo = content.KeywordRepo
type MetricsSnapshotRepo = content.MetricsSnapshotRepo
type SuggestionRepo = content.SuggestionRepo
type ProposedPageRepo = content.ProposedPageRepo
type ContentBlockRepo = content.ContentBlockRepo
type LinkingRuleRepo = content.LinkingRuleRepo
type CtaTemplateRepo = content.CtaTemplateRepo
type OptimizationRunRepo = content.OptimizationRunRepo

func NewKeywordRepo(db *gorm.DB, baseLog *logger.Logger) KeywordRepo {
	return content.NewKeywordRepo(db, baseLog)
}
func NewMetricsSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) MetricsSnapshotRepo {
	return content.NewMetricsSnapshotRepo(db, baseLog)
}
func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	return content.NewSuggestionRepo(db, baseLog)
}
func NewProposedPageRepo(db *gorm.DB, baseLog *logger.Logger) ProposedPageRepo {
	return content.NewProposedPageRepo(db, baseLog)
}
func NewContentBlockRepo(db *gorm.DB, baseLog *logger.Logger) ContentBlockRepo {
	return content.NewContentBlockRepo(db, baseLog)
}
func NewLinkingRuleRepo(db *gorm.DB, baseLog *logger.Logger) LinkingRuleRepo {
	return content.NewLinkingRuleRepo(db, baseLog)
}
func NewCtaTemplateRepo(db *gorm.DB, baseLog *logger.Logger) CtaTemplateRepo {
	return content.NewCtaTemplateRepo(db, baseLog)
}
func NewOptimizationRunRepo(db *gorm.DB, baseLog *logger.Logger) OptimizationRunRepo {
	return content.NewOptimizationRunRepo(db, baseLog)
}
