package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atiati82/AI-CMS-sub002/internal/data/repos"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/pagestore"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

// Manager owns every status transition for suggestions, proposed pages and
// content blocks. Transitions are compare-and-swap updates conditioned on the
// expected prior state, so the manager itself stays stateless.
type Manager struct {
	log         *logger.Logger
	suggestions repos.SuggestionRepo
	proposed    repos.ProposedPageRepo
	blocks      repos.ContentBlockRepo
	pages       pagestore.Store
}

func NewManager(
	baseLog *logger.Logger,
	suggestions repos.SuggestionRepo,
	proposed repos.ProposedPageRepo,
	blocks repos.ContentBlockRepo,
	pages pagestore.Store,
) *Manager {
	return &Manager{
		log:         baseLog.With("service", "LifecycleManager"),
		suggestions: suggestions,
		proposed:    proposed,
		blocks:      blocks,
		pages:       pages,
	}
}

func (m *Manager) AcceptSuggestion(ctx context.Context, id uuid.UUID) (*types.Suggestion, error) {
	return m.moveSuggestion(ctx, id,
		[]string{types.SuggestionStatusPending},
		types.SuggestionStatusAccepted, nil)
}

func (m *Manager) RejectSuggestion(ctx context.Context, id uuid.UUID) (*types.Suggestion, error) {
	return m.moveSuggestion(ctx, id,
		[]string{types.SuggestionStatusPending},
		types.SuggestionStatusRejected, nil)
}

// ApplySuggestion writes the suggested value into exactly the page fields its
// enhancement type implies and moves the row to applied. Valid from pending
// or accepted only; applied and rejected rows yield InvalidTransition. The
// returned diff is what actually changed on the page, for audit logging.
func (m *Manager) ApplySuggestion(ctx context.Context, id uuid.UUID) (*types.Suggestion, pagestore.FieldDiff, error) {
	s, err := m.suggestions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	diff := fieldDiffFor(s)
	prior := s.Status

	now := time.Now().UTC()
	moved, err := m.suggestions.UpdateStatusIf(ctx, id,
		[]string{types.SuggestionStatusPending, types.SuggestionStatusAccepted},
		map[string]interface{}{
			"status":     types.SuggestionStatusApplied,
			"applied_at": now,
		})
	if err != nil {
		return nil, nil, err
	}
	if !moved {
		return nil, nil, &enginerr.InvalidTransition{
			Entity: "suggestion",
			ID:     id.String(),
			From:   prior,
			To:     types.SuggestionStatusApplied,
		}
	}

	if len(diff) > 0 {
		if err := m.pages.UpdatePageFields(ctx, s.PageID, diff); err != nil {
			// hand the slot back so the review UI can retry
			if _, rbErr := m.suggestions.UpdateStatusIf(ctx, id,
				[]string{types.SuggestionStatusApplied},
				map[string]interface{}{"status": prior, "applied_at": nil}); rbErr != nil {
				m.log.Error("apply rollback failed", "suggestion_id", id.String(), "error", rbErr)
			}
			return nil, nil, err
		}
	}

	s.Status = types.SuggestionStatusApplied
	s.AppliedAt = &now
	m.log.Info("suggestion applied",
		"suggestion_id", id.String(),
		"page_id", s.PageID.String(),
		"enhancement_type", s.EnhancementType,
		"fields", len(diff))
	return s, diff, nil
}

func (m *Manager) moveSuggestion(ctx context.Context, id uuid.UUID, from []string, to string, updates map[string]interface{}) (*types.Suggestion, error) {
	s, err := m.suggestions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	moved, err := m.suggestions.UpdateStatusIf(ctx, id, from, updates)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, &enginerr.InvalidTransition{
			Entity: "suggestion",
			ID:     id.String(),
			From:   s.Status,
			To:     to,
		}
	}
	s.Status = to
	return s, nil
}

// fieldDiffFor maps an enhancement type onto page columns. Advisory types
// (tags, image prompts, keyword notes) change no page field; applying them
// only retires the suggestion.
func fieldDiffFor(s *types.Suggestion) pagestore.FieldDiff {
	switch s.EnhancementType {
	case types.EnhancementTitle:
		return pagestore.FieldDiff{"title": s.SuggestedValue}
	case types.EnhancementSummary:
		return pagestore.FieldDiff{"summary": s.SuggestedValue}
	case types.EnhancementSEOTitle:
		return pagestore.FieldDiff{"seo_title": s.SuggestedValue}
	case types.EnhancementSEODescription:
		return pagestore.FieldDiff{"seo_description": s.SuggestedValue}
	case types.EnhancementHeroContent:
		return pagestore.FieldDiff{"hero_html": s.SuggestedValue}
	case types.EnhancementSectionContent, types.EnhancementFAQ, types.EnhancementInternalLink, types.EnhancementCTA:
		if s.FieldName == "hero_html" {
			return pagestore.FieldDiff{"hero_html": s.SuggestedValue}
		}
		return pagestore.FieldDiff{"body_html": s.SuggestedValue}
	default:
		return nil
	}
}
