package db

import (
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
)

// AutoMigrateAll creates or updates every engine table, plus the partial
// unique index backing the one-pending-suggestion-per-slot invariant and the
// single-published-block-per-hook invariant.
func (s *PostgresService) AutoMigrateAll() error {
	if err := s.db.AutoMigrate(
		&types.Page{},
		&types.Keyword{},
		&types.MetricsSnapshot{},
		&types.Suggestion{},
		&types.ProposedPage{},
		&types.AiContentBlock{},
		&types.LinkingRule{},
		&types.CtaTemplate{},
		&types.OptimizationRun{},
	); err != nil {
		return err
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_suggestion_pending_slot
			ON suggestion (page_id, enhancement_type, field_name)
			WHERE status = 'pending'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_block_published_hook
			ON ai_content_block (page_id, hook)
			WHERE status = 'published'`,
	}
	for _, stmt := range stmts {
		if err := s.db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
