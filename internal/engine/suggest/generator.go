package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/atiati82/AI-CMS-sub002/internal/data/repos"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/linking"
	"github.com/atiati82/AI-CMS-sub002/internal/pagestore"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/openai"
)

const brandVoice = "Write for a practical marketing site: plain language, short sentences, no hype."

// Generator audits pages for weak fields and turns each one into a reviewable
// suggestion. Heuristic slots are filled deterministically; long-form slots
// delegate to the content-generation collaborator when it is configured.
type Generator struct {
	log         *logger.Logger
	keywords    repos.KeywordRepo
	suggestions repos.SuggestionRepo
	proposed    repos.ProposedPageRepo
	pages       pagestore.Store
	matcher     *linking.Matcher
	ai          openai.Client

	// one lock per page covers check-existing -> generate -> upsert, so two
	// concurrent passes cannot both see an empty slot and double-insert.
	pageLocks sync.Map
}

func NewGenerator(
	baseLog *logger.Logger,
	keywords repos.KeywordRepo,
	suggestions repos.SuggestionRepo,
	proposed repos.ProposedPageRepo,
	pages pagestore.Store,
	matcher *linking.Matcher,
	ai openai.Client,
) *Generator {
	return &Generator{
		log:         baseLog.With("service", "SuggestionGenerator"),
		keywords:    keywords,
		suggestions: suggestions,
		proposed:    proposed,
		pages:       pages,
		matcher:     matcher,
		ai:          ai,
	}
}

func (g *Generator) lockPage(pageID uuid.UUID) func() {
	v, _ := g.pageLocks.LoadOrStore(pageID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// GenerateForPage produces suggestions for every weak slot on one page.
// rules and ctas are the run-level rule snapshot. A collaborator failure
// skips that slot and moves on; the returned error is reserved for not-found
// pages and storage failures.
func (g *Generator) GenerateForPage(ctx context.Context, pageID uuid.UUID, rules []types.LinkingRule, ctas []types.CtaTemplate) ([]*types.Suggestion, error) {
	unlock := g.lockPage(pageID)
	defer unlock()

	page, err := g.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	keyword, err := g.keywords.TopForPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	audit := auditContent(page.BodyHTML)

	var out []*types.Suggestion
	upsert := func(s *types.Suggestion) {
		saved, err := g.suggestions.UpsertPending(ctx, s)
		if err != nil {
			g.log.Warn("suggestion upsert failed",
				"page_id", pageID.String(),
				"enhancement_type", s.EnhancementType,
				"error", err)
			return
		}
		out = append(out, saved)
	}

	if s := g.seoTitleSuggestion(page, keyword); s != nil {
		upsert(s)
	}
	if s := g.seoDescriptionSuggestion(ctx, page, keyword, audit); s != nil {
		upsert(s)
	}
	if s := g.internalLinkSuggestion(page, audit, rules); s != nil {
		upsert(s)
	}
	if s := g.ctaSuggestion(page, ctas); s != nil {
		upsert(s)
	}
	if s := g.heroSuggestion(ctx, page, keyword); s != nil {
		upsert(s)
	}
	if s := g.sectionContentSuggestion(ctx, page, keyword, audit); s != nil {
		upsert(s)
	}
	if s := g.faqSuggestion(ctx, page, keyword, audit); s != nil {
		upsert(s)
	}

	return out, nil
}

func (g *Generator) seoTitleSuggestion(page *types.Page, keyword *types.Keyword) *types.Suggestion {
	if len(strings.TrimSpace(page.SEOTitle)) >= minSEOTitleLen {
		return nil
	}
	title := page.Title
	if keyword != nil && !strings.Contains(strings.ToLower(title), strings.ToLower(keyword.Phrase)) {
		title = fmt.Sprintf("%s: %s", page.Title, keyword.Phrase)
	}
	value := truncate(title, maxSEOTitleLen)
	if value == "" || value == page.SEOTitle {
		return nil
	}
	return &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementSEOTitle,
		FieldName:       "seo_title",
		CurrentValue:    page.SEOTitle,
		SuggestedValue:  value,
		Confidence:      70,
	}
}

func (g *Generator) seoDescriptionSuggestion(ctx context.Context, page *types.Page, keyword *types.Keyword, audit pageAudit) *types.Suggestion {
	if len(strings.TrimSpace(page.SEODescription)) >= minSEODescriptionLen {
		return nil
	}

	s := &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementSEODescription,
		FieldName:       "seo_description",
		CurrentValue:    page.SEODescription,
	}

	if g.ai != nil {
		prompt := fmt.Sprintf(
			"Write a meta description (at most %d characters) for the page %q.\nPage summary: %s\nTarget keyword: %s",
			maxSEODescriptionLen, page.Title, pageSummary(page, audit), keywordPhrase(keyword))
		text, err := g.ai.GenerateText(ctx, brandVoice, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			s.SuggestedValue = truncate(text, maxSEODescriptionLen)
			s.Confidence = 75
			s.Provenance = provenance(g.ai.Model(), prompt)
			return s
		}
		if err != nil {
			g.log.Warn("seo description generation failed, falling back to heuristic",
				"page_id", page.ID.String(), "error", err)
		}
	}

	fallback := pageSummary(page, audit)
	if fallback == "" {
		return nil
	}
	s.SuggestedValue = truncate(fallback, maxSEODescriptionLen)
	s.Confidence = 55
	return s
}

// internalLinkSuggestion runs the matcher over the body and, when it finds
// insertions, proposes the rewritten content as a single low-risk suggestion.
func (g *Generator) internalLinkSuggestion(page *types.Page, audit pageAudit, rules []types.LinkingRule) *types.Suggestion {
	if audit.internalLinks >= minInternalLinks || len(rules) == 0 {
		return nil
	}
	newContent, applied, err := g.matcher.ApplyLinks(page.BodyHTML,
		linking.PageContext{Path: page.Path, PageType: page.PageType, Cluster: page.Cluster}, rules)
	if err != nil {
		g.log.Warn("link matching failed", "page_id", page.ID.String(), "error", err)
		return nil
	}
	if len(applied) == 0 || newContent == page.BodyHTML {
		return nil
	}
	meta, _ := json.Marshal(map[string]any{"applied_links": applied})
	return &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementInternalLink,
		FieldName:       "body_html",
		CurrentValue:    page.BodyHTML,
		SuggestedValue:  newContent,
		Confidence:      95,
		Provenance:      datatypes.JSON(meta),
	}
}

// ctaSuggestion places call-to-action blocks mechanically and proposes the
// rewritten body. Sidebar placements do not touch the content; they only ride
// along in the provenance for the renderer.
func (g *Generator) ctaSuggestion(page *types.Page, ctas []types.CtaTemplate) *types.Suggestion {
	if len(ctas) == 0 {
		return nil
	}
	newContent, applied, err := g.matcher.InsertCTAs(page.BodyHTML,
		linking.PageContext{Path: page.Path, PageType: page.PageType, Cluster: page.Cluster}, ctas)
	if err != nil {
		g.log.Warn("cta placement failed", "page_id", page.ID.String(), "error", err)
		return nil
	}
	if len(applied) == 0 || newContent == page.BodyHTML {
		return nil
	}
	meta, _ := json.Marshal(map[string]any{"applied_ctas": applied})
	return &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementCTA,
		FieldName:       "body_html",
		CurrentValue:    page.BodyHTML,
		SuggestedValue:  newContent,
		Confidence:      85,
		Provenance:      datatypes.JSON(meta),
	}
}

func (g *Generator) heroSuggestion(ctx context.Context, page *types.Page, keyword *types.Keyword) *types.Suggestion {
	if strings.TrimSpace(page.HeroHTML) != "" || g.ai == nil {
		return nil
	}
	prompt := fmt.Sprintf(
		"Write a hero section (an <h1> headline and one short lead paragraph, HTML) for the page %q.\nPage summary: %s\nTarget keyword: %s",
		page.Title, strings.TrimSpace(page.Summary), keywordPhrase(keyword))
	hero, err := g.ai.GenerateText(ctx, brandVoice, prompt)
	if err != nil || strings.TrimSpace(hero) == "" {
		if err != nil {
			g.log.Warn("hero generation failed", "page_id", page.ID.String(), "error", err)
		}
		return nil
	}
	return &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementHeroContent,
		FieldName:       "hero_html",
		CurrentValue:    page.HeroHTML,
		SuggestedValue:  strings.TrimSpace(hero),
		Confidence:      50,
		Provenance:      provenance(g.ai.Model(), prompt),
	}
}

func (g *Generator) sectionContentSuggestion(ctx context.Context, page *types.Page, keyword *types.Keyword, audit pageAudit) *types.Suggestion {
	if audit.wordCount >= minWordCount || g.ai == nil {
		return nil
	}
	prompt := fmt.Sprintf(
		"The page %q is thin (%d words). Write one additional HTML section (<h2> + paragraphs) covering the target keyword %q.\nExisting headings: %s",
		page.Title, audit.wordCount, keywordPhrase(keyword), strings.Join(audit.headings, "; "))
	section, err := g.ai.GenerateText(ctx, brandVoice, prompt)
	if err != nil || strings.TrimSpace(section) == "" {
		if err != nil {
			g.log.Warn("section generation failed", "page_id", page.ID.String(), "error", err)
		}
		return nil
	}
	return &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementSectionContent,
		FieldName:       "body_html",
		CurrentValue:    page.BodyHTML,
		SuggestedValue:  page.BodyHTML + "\n" + strings.TrimSpace(section),
		Confidence:      55,
		Provenance:      provenance(g.ai.Model(), prompt),
	}
}

func (g *Generator) faqSuggestion(ctx context.Context, page *types.Page, keyword *types.Keyword, audit pageAudit) *types.Suggestion {
	if audit.hasFAQ || keyword == nil || g.ai == nil {
		return nil
	}
	prompt := fmt.Sprintf(
		"Write an HTML FAQ section (an <h2>FAQ</h2> heading, then 3 question/answer pairs) for the page %q targeting %q.",
		page.Title, keyword.Phrase)
	faq, err := g.ai.GenerateText(ctx, brandVoice, prompt)
	if err != nil || strings.TrimSpace(faq) == "" {
		if err != nil {
			g.log.Warn("faq generation failed", "page_id", page.ID.String(), "error", err)
		}
		return nil
	}
	return &types.Suggestion{
		PageID:          page.ID,
		EnhancementType: types.EnhancementFAQ,
		FieldName:       "body_html",
		CurrentValue:    page.BodyHTML,
		SuggestedValue:  page.BodyHTML + "\n" + strings.TrimSpace(faq),
		Confidence:      60,
		Provenance:      provenance(g.ai.Model(), prompt),
	}
}

func pageSummary(page *types.Page, audit pageAudit) string {
	if s := strings.TrimSpace(page.Summary); s != "" {
		return s
	}
	return audit.firstParagraph
}

func keywordPhrase(k *types.Keyword) string {
	if k == nil {
		return ""
	}
	return k.Phrase
}

func provenance(model, prompt string) datatypes.JSON {
	raw, _ := json.Marshal(types.Provenance{AIModel: model, Prompt: prompt})
	return datatypes.JSON(raw)
}
