package lifecycle

import (
	"context"
	"encoding/json"
	"html"
	"strings"

	"github.com/google/uuid"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
)

func (m *Manager) ApproveProposedPage(ctx context.Context, id uuid.UUID) (*types.ProposedPage, error) {
	return m.moveProposed(ctx, id,
		[]string{types.ProposedPageStatusProposed},
		types.ProposedPageStatusApproved, nil)
}

func (m *Manager) RejectProposedPage(ctx context.Context, id uuid.UUID) (*types.ProposedPage, error) {
	return m.moveProposed(ctx, id,
		[]string{types.ProposedPageStatusProposed},
		types.ProposedPageStatusRejected, nil)
}

// CreateProposedPage materializes an approved proposal into the page store
// and records the new page id. created is terminal.
func (m *Manager) CreateProposedPage(ctx context.Context, id uuid.UUID) (*types.ProposedPage, error) {
	p, err := m.proposed.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != types.ProposedPageStatusApproved {
		return nil, &enginerr.InvalidTransition{
			Entity: "proposed_page",
			ID:     id.String(),
			From:   p.Status,
			To:     types.ProposedPageStatusCreated,
		}
	}

	draft := &types.Page{
		Path:     "/" + strings.TrimPrefix(p.Slug, "/"),
		Title:    p.Title,
		Cluster:  p.Cluster,
		BodyHTML: p.DraftContent,
	}
	if outline := outlineHeadings(p.Outline); len(outline) > 0 && draft.BodyHTML == "" {
		var b strings.Builder
		for _, h := range outline {
			b.WriteString("<h2>")
			b.WriteString(html.EscapeString(h))
			b.WriteString("</h2>")
		}
		draft.BodyHTML = b.String()
	}

	pageID, err := m.pages.CreatePage(ctx, draft)
	if err != nil {
		return nil, err
	}

	out, err := m.moveProposed(ctx, id,
		[]string{types.ProposedPageStatusApproved},
		types.ProposedPageStatusCreated,
		map[string]interface{}{"created_page_id": pageID})
	if err != nil {
		return nil, err
	}
	out.CreatedPageID = &pageID
	m.log.Info("proposed page created",
		"proposed_page_id", id.String(),
		"page_id", pageID.String(),
		"slug", p.Slug)
	return out, nil
}

func (m *Manager) moveProposed(ctx context.Context, id uuid.UUID, from []string, to string, updates map[string]interface{}) (*types.ProposedPage, error) {
	p, err := m.proposed.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	moved, err := m.proposed.UpdateStatusIf(ctx, id, from, updates)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, &enginerr.InvalidTransition{
			Entity: "proposed_page",
			ID:     id.String(),
			From:   p.Status,
			To:     to,
		}
	}
	p.Status = to
	return p, nil
}

// outlineHeadings accepts both stored outline shapes: the generator's
// {"headings": [...]} object and a bare heading array.
func outlineHeadings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var obj struct {
		Headings []string `json:"headings"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj.Headings) > 0 {
		return obj.Headings
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
