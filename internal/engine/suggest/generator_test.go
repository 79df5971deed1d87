package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atiati82/AI-CMS-sub002/internal/config"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/linking"
	"github.com/atiati82/AI-CMS-sub002/internal/pagestore"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

// --- fakes -----------------------------------------------------------------

type fakeKeywords struct {
	top       map[uuid.UUID]*types.Keyword
	byCluster map[string][]*types.Keyword
}

func (f *fakeKeywords) Create(ctx context.Context, kws []*types.Keyword) ([]*types.Keyword, error) {
	return kws, nil
}
func (f *fakeKeywords) GetByID(ctx context.Context, id uuid.UUID) (*types.Keyword, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeKeywords) ListActive(ctx context.Context) ([]*types.Keyword, error)   { return nil, nil }
func (f *fakeKeywords) ListServed(ctx context.Context) ([]*types.Keyword, error)   { return nil, nil }
func (f *fakeKeywords) ListUnserved(ctx context.Context) ([]*types.Keyword, error) { return nil, nil }
func (f *fakeKeywords) ListByCluster(ctx context.Context, cluster string) ([]*types.Keyword, error) {
	return f.byCluster[cluster], nil
}
func (f *fakeKeywords) TopForPage(ctx context.Context, pageID uuid.UUID) (*types.Keyword, error) {
	return f.top[pageID], nil
}
func (f *fakeKeywords) MarkAnalyzed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	return nil
}
func (f *fakeKeywords) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

type slotKey struct {
	pageID          uuid.UUID
	enhancementType string
	fieldName       string
}

// fakeSuggestions mimics the one-pending-per-slot upsert.
type fakeSuggestions struct {
	rows    map[slotKey]*types.Suggestion
	upserts int
}

func newFakeSuggestions() *fakeSuggestions {
	return &fakeSuggestions{rows: map[slotKey]*types.Suggestion{}}
}

func (f *fakeSuggestions) GetByID(ctx context.Context, id uuid.UUID) (*types.Suggestion, error) {
	for _, s := range f.rows {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("not found")
}
func (f *fakeSuggestions) List(ctx context.Context, status string, pageID *uuid.UUID, limit int) ([]*types.Suggestion, error) {
	var out []*types.Suggestion
	for _, s := range f.rows {
		out = append(out, s)
	}
	return out, nil
}
func (f *fakeSuggestions) FindPendingSlot(ctx context.Context, pageID uuid.UUID, enhancementType, fieldName string) (*types.Suggestion, error) {
	return f.rows[slotKey{pageID, enhancementType, fieldName}], nil
}
func (f *fakeSuggestions) UpsertPending(ctx context.Context, s *types.Suggestion) (*types.Suggestion, error) {
	f.upserts++
	key := slotKey{s.PageID, s.EnhancementType, s.FieldName}
	if existing, ok := f.rows[key]; ok {
		existing.SuggestedValue = s.SuggestedValue
		existing.CurrentValue = s.CurrentValue
		existing.Confidence = s.Confidence
		return existing, nil
	}
	s.ID = uuid.New()
	s.Status = types.SuggestionStatusPending
	f.rows[key] = s
	return s, nil
}
func (f *fakeSuggestions) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	return false, errors.New("not implemented")
}

type fakeProposed struct {
	rows []*types.ProposedPage
}

func (f *fakeProposed) Create(ctx context.Context, p *types.ProposedPage) (*types.ProposedPage, error) {
	p.ID = uuid.New()
	f.rows = append(f.rows, p)
	return p, nil
}
func (f *fakeProposed) GetByID(ctx context.Context, id uuid.UUID) (*types.ProposedPage, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeProposed) List(ctx context.Context, status string, limit int) ([]*types.ProposedPage, error) {
	return f.rows, nil
}
func (f *fakeProposed) ExistsOpenForKeyword(ctx context.Context, keywordID uuid.UUID) (bool, error) {
	for _, p := range f.rows {
		if p.KeywordID == keywordID &&
			(p.Status == types.ProposedPageStatusProposed || p.Status == types.ProposedPageStatusApproved) {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeProposed) SlugTaken(ctx context.Context, slug string) (bool, error) {
	for _, p := range f.rows {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeProposed) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	return false, errors.New("not implemented")
}

type fakePages struct {
	pages map[uuid.UUID]*types.Page
}

func (f *fakePages) GetPage(ctx context.Context, id uuid.UUID) (*types.Page, error) {
	p, ok := f.pages[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *p
	return &cp, nil
}
func (f *fakePages) GetPageByPath(ctx context.Context, path string) (*types.Page, error) {
	return nil, errors.New("not implemented")
}
func (f *fakePages) ListPages(ctx context.Context) ([]*types.Page, error) { return nil, nil }
func (f *fakePages) UpdatePageFields(ctx context.Context, id uuid.UUID, diff pagestore.FieldDiff) error {
	return nil
}
func (f *fakePages) CreatePage(ctx context.Context, draft *types.Page) (uuid.UUID, error) {
	return uuid.New(), nil
}

// fakeAI returns a canned response per call, or fails everything.
type fakeAI struct {
	text string
	err  error
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	return f.text, f.err
}
func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return nil, f.err
}
func (f *fakeAI) Model() string { return "fake-model" }

// --- helpers ---------------------------------------------------------------

type fixture struct {
	gen         *Generator
	keywords    *fakeKeywords
	suggestions *fakeSuggestions
	proposed    *fakeProposed
	pages       *fakePages
}

func newFixture(t *testing.T, ai *fakeAI) *fixture {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	cfg := config.Default()
	f := &fixture{
		keywords:    &fakeKeywords{top: map[uuid.UUID]*types.Keyword{}, byCluster: map[string][]*types.Keyword{}},
		suggestions: newFakeSuggestions(),
		proposed:    &fakeProposed{},
		pages:       &fakePages{pages: map[uuid.UUID]*types.Page{}},
	}
	matcher := linking.NewMatcher(cfg.Linking, log)
	if ai == nil {
		// a typed nil would make the interface non-nil
		f.gen = NewGenerator(log, f.keywords, f.suggestions, f.proposed, f.pages, matcher, nil)
	} else {
		f.gen = NewGenerator(log, f.keywords, f.suggestions, f.proposed, f.pages, matcher, ai)
	}
	return f
}

func thinPage() *types.Page {
	return &types.Page{
		ID:       uuid.New(),
		Path:     "/services/roof-repair",
		Title:    "Roof Repair",
		BodyHTML: "<p>We repair roofs across the region.</p>",
	}
}

// --- tests -----------------------------------------------------------------

func TestGenerateForPageFillsWeakSlots(t *testing.T) {
	fx := newFixture(t, &fakeAI{text: "<h2>More Detail</h2><p>Generated copy about roof repair services.</p>"})
	page := thinPage()
	fx.pages.pages[page.ID] = page
	fx.keywords.top[page.ID] = &types.Keyword{ID: uuid.New(), Phrase: "roof repair cost"}

	out, err := fx.gen.GenerateForPage(context.Background(), page.ID, nil, nil)
	require.NoError(t, err)

	byType := map[string]*types.Suggestion{}
	for _, s := range out {
		byType[s.EnhancementType] = s
	}
	// empty seo_title, empty seo_description, empty hero, thin body, no FAQ
	require.Contains(t, byType, types.EnhancementSEOTitle)
	require.Contains(t, byType, types.EnhancementSEODescription)
	require.Contains(t, byType, types.EnhancementHeroContent)
	require.Contains(t, byType, types.EnhancementSectionContent)
	require.Contains(t, byType, types.EnhancementFAQ)

	title := byType[types.EnhancementSEOTitle]
	assert.Equal(t, "seo_title", title.FieldName)
	assert.Contains(t, title.SuggestedValue, "Roof Repair")
	assert.LessOrEqual(t, len(title.SuggestedValue), maxSEOTitleLen)
	assert.Equal(t, types.SuggestionStatusPending, title.Status)

	hero := byType[types.EnhancementHeroContent]
	assert.Equal(t, "hero_html", hero.FieldName)

	section := byType[types.EnhancementSectionContent]
	assert.Equal(t, "body_html", section.FieldName)
	assert.Contains(t, section.SuggestedValue, page.BodyHTML)
	assert.Contains(t, section.SuggestedValue, "Generated copy")
}

func TestGenerateForPageSecondRunUpdatesInPlace(t *testing.T) {
	fx := newFixture(t, &fakeAI{text: "<h2>Section</h2><p>Copy.</p>"})
	page := thinPage()
	fx.pages.pages[page.ID] = page

	first, err := fx.gen.GenerateForPage(context.Background(), page.ID, nil, nil)
	require.NoError(t, err)
	second, err := fx.gen.GenerateForPage(context.Background(), page.ID, nil, nil)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	// same slots, same rows: no duplicate pending suggestions
	assert.Equal(t, len(first), len(fx.suggestions.rows))
	firstIDs := map[uuid.UUID]bool{}
	for _, s := range first {
		firstIDs[s.ID] = true
	}
	for _, s := range second {
		assert.True(t, firstIDs[s.ID], "second run must refresh existing rows")
	}
}

func TestGenerateForPageSkipsStrongFields(t *testing.T) {
	fx := newFixture(t, nil)
	page := thinPage()
	page.SEOTitle = "Roof Repair Services Across the Region"
	page.SEODescription = strings.Repeat("Good description copy. ", 5)
	fx.pages.pages[page.ID] = page

	out, err := fx.gen.GenerateForPage(context.Background(), page.ID, nil, nil)
	require.NoError(t, err)
	for _, s := range out {
		assert.NotEqual(t, types.EnhancementSEOTitle, s.EnhancementType)
		assert.NotEqual(t, types.EnhancementSEODescription, s.EnhancementType)
	}
}

func TestGenerateForPageCollaboratorFailureSkipsSlot(t *testing.T) {
	fx := newFixture(t, &fakeAI{err: errors.New("upstream 503")})
	page := thinPage()
	fx.pages.pages[page.ID] = page

	out, err := fx.gen.GenerateForPage(context.Background(), page.ID, nil, nil)
	require.NoError(t, err)

	for _, s := range out {
		assert.NotEqual(t, types.EnhancementHeroContent, s.EnhancementType)
		assert.NotEqual(t, types.EnhancementSectionContent, s.EnhancementType)
		assert.NotEqual(t, types.EnhancementFAQ, s.EnhancementType)
	}
	// heuristic slots still land
	found := false
	for _, s := range out {
		if s.EnhancementType == types.EnhancementSEOTitle {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateForPageInternalLinkSuggestion(t *testing.T) {
	fx := newFixture(t, nil)
	page := thinPage()
	page.BodyHTML = "<p>Ask about roof repair cost before you book.</p>"
	fx.pages.pages[page.ID] = page

	rules := []types.LinkingRule{{
		ID:             uuid.New(),
		RuleType:       types.RuleTypeKeywordMatch,
		TriggerPattern: "roof repair cost",
		TargetPagePath: "/pricing/roof-repair",
		Priority:       100,
		MaxOccurrences: 1,
		IsActive:       true,
	}}
	out, err := fx.gen.GenerateForPage(context.Background(), page.ID, rules, nil)
	require.NoError(t, err)

	var link *types.Suggestion
	for _, s := range out {
		if s.EnhancementType == types.EnhancementInternalLink {
			link = s
		}
	}
	require.NotNil(t, link)
	assert.Equal(t, "body_html", link.FieldName)
	assert.Equal(t, 95, link.Confidence)
	assert.Contains(t, link.SuggestedValue, `<a href="/pricing/roof-repair">roof repair cost</a>`)
	assert.NotEmpty(t, link.Provenance)
}

func TestGenerateForPageCTASuggestion(t *testing.T) {
	fx := newFixture(t, nil)
	page := thinPage()
	page.BodyHTML = "<p>We install seamless gutters across the county.</p>"
	fx.pages.pages[page.ID] = page

	ctas := []types.CtaTemplate{{
		ID:             uuid.New(),
		TargetPagePath: "/contact",
		CtaHTML:        "<p>Book a free estimate.</p>",
		Position:       types.CtaPositionAfterIntro,
		Priority:       10,
		IsActive:       true,
	}}
	out, err := fx.gen.GenerateForPage(context.Background(), page.ID, nil, ctas)
	require.NoError(t, err)

	var cta *types.Suggestion
	for _, s := range out {
		if s.EnhancementType == types.EnhancementCTA {
			cta = s
		}
	}
	require.NotNil(t, cta)
	assert.Equal(t, "body_html", cta.FieldName)
	assert.Equal(t, 85, cta.Confidence)
	assert.Contains(t, cta.SuggestedValue, `class="cta-block"`)
	assert.Contains(t, cta.SuggestedValue, "Book a free estimate.")
	assert.NotEmpty(t, cta.Provenance)

	// a second pass refreshes the pending slot instead of duplicating it
	again, err := fx.gen.GenerateForPage(context.Background(), cta.PageID, nil, ctas)
	require.NoError(t, err)
	for _, s := range again {
		if s.EnhancementType == types.EnhancementCTA {
			assert.Equal(t, cta.ID, s.ID)
		}
	}
}

func TestGenerateProposedPage(t *testing.T) {
	fx := newFixture(t, nil)
	kw := &types.Keyword{ID: uuid.New(), Phrase: "metal roof installation", Cluster: "roofing"}
	fx.keywords.byCluster["roofing"] = []*types.Keyword{
		kw,
		{ID: uuid.New(), Phrase: "flat roof installation"},
	}

	p, err := fx.gen.GenerateProposedPage(context.Background(), kw)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "metal-roof-installation", p.Slug)
	assert.Equal(t, "Metal Roof Installation", p.Title)
	assert.Equal(t, types.ProposedPageStatusProposed, p.Status)
	assert.Contains(t, string(p.Outline), "Flat Roof Installation")
	assert.Contains(t, string(p.Outline), "FAQ")
}

func TestGenerateProposedPageSkipsServedAndOpen(t *testing.T) {
	fx := newFixture(t, nil)
	pageID := uuid.New()
	served := &types.Keyword{ID: uuid.New(), Phrase: "roof repair", PageID: &pageID}

	p, err := fx.gen.GenerateProposedPage(context.Background(), served)
	require.NoError(t, err)
	assert.Nil(t, p)

	kw := &types.Keyword{ID: uuid.New(), Phrase: "gutter cleaning"}
	first, err := fx.gen.GenerateProposedPage(context.Background(), kw)
	require.NoError(t, err)
	require.NotNil(t, first)

	again, err := fx.gen.GenerateProposedPage(context.Background(), kw)
	require.NoError(t, err)
	assert.Nil(t, again, "open proposal must suppress a duplicate")
	assert.Len(t, fx.proposed.rows, 1)
}

func TestGenerateProposedPageSlugCollision(t *testing.T) {
	fx := newFixture(t, nil)
	fx.proposed.rows = append(fx.proposed.rows, &types.ProposedPage{
		ID: uuid.New(), KeywordID: uuid.New(), Slug: "gutter-cleaning",
		Status: types.ProposedPageStatusCreated,
	})

	p, err := fx.gen.GenerateProposedPage(context.Background(), &types.Keyword{ID: uuid.New(), Phrase: "Gutter Cleaning!"})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "gutter-cleaning-2", p.Slug)
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Metal Roof Installation", "metal-roof-installation"},
		{"  FAQs & pricing!  ", "faqs-pricing"},
		{"already-slugged", "already-slugged"},
		{"---", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, slugify(c.in), fmt.Sprintf("slugify(%q)", c.in))
	}
}

func TestTruncateRespectsWordBoundary(t *testing.T) {
	s := "roofing services for homes and small businesses"
	out := truncate(s, 20)
	assert.LessOrEqual(t, len(out), 20)
	assert.False(t, strings.HasSuffix(out, " "))
	assert.Equal(t, s, truncate(s, 100))
}
