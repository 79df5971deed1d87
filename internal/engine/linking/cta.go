package linking

import (
	"fmt"
	"sort"
	"strings"

	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
)

// AppliedCTA reports one call-to-action placement. Sidebar templates are not
// inlined into the content; they come back with Inline=false so the renderer
// can place them.
type AppliedCTA struct {
	TemplateID string `json:"template_id"`
	Position   string `json:"position"`
	Inline     bool   `json:"inline"`
	CtaHTML    string `json:"cta_html,omitempty"`
}

// InsertCTAs places call-to-action blocks at the structural positions their
// templates name. One template wins per position (lowest priority number);
// a template whose trigger pattern is absent from the content is skipped.
// Already-placed templates are detected by their data attribute marker, so
// re-running is a no-op.
func (m *Matcher) InsertCTAs(content string, pageCtx PageContext, templates []types.CtaTemplate) (string, []AppliedCTA, error) {
	if strings.TrimSpace(content) == "" || len(templates) == 0 {
		return content, nil, nil
	}

	segs, err := tokenize(content)
	if err != nil {
		return content, nil, fmt.Errorf("tokenize content: %w", err)
	}

	active := make([]types.CtaTemplate, 0, len(templates))
	for _, t := range templates {
		if !t.IsActive || strings.TrimSpace(t.CtaHTML) == "" {
			continue
		}
		if t.TargetPagePath == pageCtx.Path {
			continue
		}
		active = append(active, t)
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Priority < active[j].Priority })

	lowerContent := strings.ToLower(content)
	inserts := map[int][]string{}
	taken := map[string]bool{}
	var applied []AppliedCTA

	for _, t := range active {
		if taken[t.Position] {
			continue
		}
		marker := fmt.Sprintf(`data-cta-template="%s"`, t.ID.String())
		if strings.Contains(content, marker) {
			continue
		}
		if p := strings.ToLower(strings.TrimSpace(t.TriggerPattern)); p != "" && !strings.Contains(lowerContent, p) {
			continue
		}

		if t.Position == types.CtaPositionSidebar {
			taken[t.Position] = true
			applied = append(applied, AppliedCTA{TemplateID: t.ID.String(), Position: t.Position, Inline: false, CtaHTML: t.CtaHTML})
			continue
		}

		at, ok := positionIndex(segs, t.Position, len(content))
		if !ok {
			// no structural slot on this page, fall back to the footer
			at = len(segs)
		}
		block := fmt.Sprintf(`<div class="cta-block" data-cta-template="%s">%s</div>`, t.ID.String(), t.CtaHTML)
		inserts[at] = append(inserts[at], block)
		taken[t.Position] = true
		applied = append(applied, AppliedCTA{TemplateID: t.ID.String(), Position: t.Position, Inline: true})
	}

	if len(applied) == 0 {
		return content, nil, nil
	}

	var b strings.Builder
	for i, s := range segs {
		for _, block := range inserts[i] {
			b.WriteString(block)
		}
		b.WriteString(s.raw)
	}
	for _, block := range inserts[len(segs)] {
		b.WriteString(block)
	}

	out := b.String()
	if !balanced(out) {
		m.log.Error("cta insert produced unbalanced markup, keeping original content", "page_path", pageCtx.Path)
		return content, nil, nil
	}
	return out, applied, nil
}

// positionIndex resolves a CTA position to the segment index the block goes
// in front of. ok=false means the page has no slot for that position.
func positionIndex(segs []segment, position string, contentLen int) (int, bool) {
	switch position {
	case types.CtaPositionAfterIntro:
		for i, s := range segs {
			if s.isEnd && s.tag == "p" {
				return i + 1, true
			}
		}
		return 0, false
	case types.CtaPositionMidContent:
		mid := contentLen / 2
		offset := 0
		for i, s := range segs {
			offset += len(s.raw)
			if s.isEnd && s.tag == "p" && offset >= mid {
				return i + 1, true
			}
		}
		return 0, false
	case types.CtaPositionBeforeFAQ:
		for i, s := range segs {
			if s.tag != "" && !s.isEnd && isHeading(s.tag) && headingMentionsFAQ(segs, i) {
				return i, true
			}
		}
		return 0, false
	case types.CtaPositionFooter:
		return len(segs), true
	default:
		return 0, false
	}
}

func headingMentionsFAQ(segs []segment, start int) bool {
	for i := start + 1; i < len(segs); i++ {
		s := segs[i]
		if s.isEnd && isHeading(s.tag) {
			return false
		}
		if s.isText {
			text := strings.ToLower(s.raw)
			if strings.Contains(text, "faq") || strings.Contains(text, "frequently asked") {
				return true
			}
		}
	}
	return false
}
