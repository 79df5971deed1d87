package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atiati82/AI-CMS-sub002/internal/config"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/lifecycle"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/linking"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/suggest"
	"github.com/atiati82/AI-CMS-sub002/internal/pagestore"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/analytics"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/enginerr"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

// --- fakes -----------------------------------------------------------------

type fakeRuns struct {
	mu         sync.Mutex
	locked     bool
	runs       map[uuid.UUID]*types.OptimizationRun
	heartbeats int
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{runs: map[uuid.UUID]*types.OptimizationRun{}}
}

func (f *fakeRuns) StartRun(ctx context.Context, trigger string, staleAfter time.Duration) (*types.OptimizationRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locked {
		return nil, enginerr.ErrRunInProgress
	}
	f.locked = true
	now := time.Now().UTC()
	run := &types.OptimizationRun{
		ID:          uuid.New(),
		Trigger:     trigger,
		Status:      types.RunStatusInProgress,
		StartedAt:   now,
		HeartbeatAt: &now,
		Errors:      []byte("[]"),
	}
	f.runs[run.ID] = run
	return run, nil
}

func (f *fakeRuns) Heartbeat(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeats++
	return nil
}

func (f *fakeRuns) Finalize(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok || run.Status != types.RunStatusInProgress {
		return &enginerr.ConcurrencyConflict{Entity: "optimization_run", ID: id.String()}
	}
	run.Status = updates["status"].(string)
	run.PagesScored = updates["pages_scored"].(int)
	run.SuggestionsCreated = updates["suggestions_created"].(int)
	run.LinksApplied = updates["links_applied"].(int)
	run.PagesProposed = updates["pages_proposed"].(int)
	run.ErrorCount = updates["error_count"].(int)
	run.Errors = updates["errors"].([]byte)
	f.locked = false
	return nil
}

func (f *fakeRuns) GetByID(ctx context.Context, id uuid.UUID) (*types.OptimizationRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	run, ok := f.runs[id]
	if !ok {
		return nil, enginerr.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (f *fakeRuns) List(ctx context.Context, limit int) ([]*types.OptimizationRun, error) {
	return nil, nil
}

type fakeKeywords struct {
	mu       sync.Mutex
	served   []*types.Keyword
	unserved []*types.Keyword
	top      map[uuid.UUID]*types.Keyword
	analyzed []uuid.UUID
}

func (f *fakeKeywords) Create(ctx context.Context, kws []*types.Keyword) ([]*types.Keyword, error) {
	return kws, nil
}
func (f *fakeKeywords) GetByID(ctx context.Context, id uuid.UUID) (*types.Keyword, error) {
	return nil, enginerr.ErrNotFound
}
func (f *fakeKeywords) ListActive(ctx context.Context) ([]*types.Keyword, error) { return nil, nil }
func (f *fakeKeywords) ListServed(ctx context.Context) ([]*types.Keyword, error) {
	return f.served, nil
}
func (f *fakeKeywords) ListUnserved(ctx context.Context) ([]*types.Keyword, error) {
	return f.unserved, nil
}
func (f *fakeKeywords) ListByCluster(ctx context.Context, cluster string) ([]*types.Keyword, error) {
	return nil, nil
}
func (f *fakeKeywords) TopForPage(ctx context.Context, pageID uuid.UUID) (*types.Keyword, error) {
	return f.top[pageID], nil
}
func (f *fakeKeywords) MarkAnalyzed(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, ids...)
	return nil
}
func (f *fakeKeywords) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

type fakeSnapshots struct {
	mu     sync.Mutex
	byPage map[uuid.UUID]*types.MetricsSnapshot
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{byPage: map[uuid.UUID]*types.MetricsSnapshot{}}
}

func (f *fakeSnapshots) Create(ctx context.Context, snaps []*types.MetricsSnapshot) ([]*types.MetricsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range snaps {
		s.ID = uuid.New()
		f.byPage[s.PageID] = s
	}
	return snaps, nil
}
func (f *fakeSnapshots) LatestForPage(ctx context.Context, pageID uuid.UUID) (*types.MetricsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byPage[pageID], nil
}
func (f *fakeSnapshots) RecentForPage(ctx context.Context, pageID uuid.UUID, limit int) ([]*types.MetricsSnapshot, error) {
	return nil, nil
}

type fakeRules struct {
	rules []types.LinkingRule
}

func (f *fakeRules) ListActive(ctx context.Context) ([]types.LinkingRule, error) {
	return f.rules, nil
}

type fakeCtas struct {
	templates []types.CtaTemplate
}

func (f *fakeCtas) ListActive(ctx context.Context) ([]types.CtaTemplate, error) {
	return f.templates, nil
}

type fakeBlocks struct {
	mu       sync.Mutex
	counters map[uuid.UUID][2]int
}

func newFakeBlocks() *fakeBlocks { return &fakeBlocks{counters: map[uuid.UUID][2]int{}} }

func (f *fakeBlocks) Create(ctx context.Context, b *types.AiContentBlock) (*types.AiContentBlock, error) {
	return b, nil
}
func (f *fakeBlocks) GetByID(ctx context.Context, id uuid.UUID) (*types.AiContentBlock, error) {
	return nil, enginerr.ErrNotFound
}
func (f *fakeBlocks) ListPublished(ctx context.Context, pageID uuid.UUID) ([]*types.AiContentBlock, error) {
	return nil, nil
}
func (f *fakeBlocks) PublishExclusive(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeBlocks) AddCounters(ctx context.Context, id uuid.UUID, impressions, clicks int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev := f.counters[id]
	f.counters[id] = [2]int{prev[0] + impressions, prev[1] + clicks}
	return nil
}
func (f *fakeBlocks) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	return false, nil
}

type fakePages struct {
	mu    sync.Mutex
	pages map[uuid.UUID]*types.Page
	order []uuid.UUID
}

func newFakePages() *fakePages { return &fakePages{pages: map[uuid.UUID]*types.Page{}} }

func (f *fakePages) add(p *types.Page) {
	f.pages[p.ID] = p
	f.order = append(f.order, p.ID)
}
func (f *fakePages) GetPage(ctx context.Context, id uuid.UUID) (*types.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return nil, enginerr.ErrNotFound
	}
	cp := *p
	return &cp, nil
}
func (f *fakePages) GetPageByPath(ctx context.Context, path string) (*types.Page, error) {
	return nil, enginerr.ErrNotFound
}
func (f *fakePages) ListPages(ctx context.Context) ([]*types.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*types.Page, 0, len(f.order))
	for _, id := range f.order {
		cp := *f.pages[id]
		out = append(out, &cp)
	}
	return out, nil
}
func (f *fakePages) UpdatePageFields(ctx context.Context, id uuid.UUID, diff pagestore.FieldDiff) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return enginerr.ErrNotFound
	}
	if v, ok := diff["body_html"]; ok {
		p.BodyHTML = v
	}
	if v, ok := diff["seo_title"]; ok {
		p.SEOTitle = v
	}
	return nil
}
func (f *fakePages) CreatePage(ctx context.Context, draft *types.Page) (uuid.UUID, error) {
	return uuid.New(), nil
}

type fakeSuggestions struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.Suggestion
}

func newFakeSuggestionRepo() *fakeSuggestions {
	return &fakeSuggestions{rows: map[uuid.UUID]*types.Suggestion{}}
}

func (f *fakeSuggestions) GetByID(ctx context.Context, id uuid.UUID) (*types.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return nil, enginerr.ErrNotFound
	}
	cp := *s
	return &cp, nil
}
func (f *fakeSuggestions) List(ctx context.Context, status string, pageID *uuid.UUID, limit int) ([]*types.Suggestion, error) {
	return nil, nil
}
func (f *fakeSuggestions) FindPendingSlot(ctx context.Context, pageID uuid.UUID, enhancementType, fieldName string) (*types.Suggestion, error) {
	return nil, nil
}
func (f *fakeSuggestions) UpsertPending(ctx context.Context, s *types.Suggestion) (*types.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.rows {
		if existing.PageID == s.PageID && existing.EnhancementType == s.EnhancementType &&
			existing.FieldName == s.FieldName && existing.Status == types.SuggestionStatusPending {
			existing.SuggestedValue = s.SuggestedValue
			existing.Confidence = s.Confidence
			cp := *existing
			return &cp, nil
		}
	}
	s.ID = uuid.New()
	s.Status = types.SuggestionStatusPending
	f.rows[s.ID] = s
	cp := *s
	return &cp, nil
}
func (f *fakeSuggestions) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	for _, from := range fromStatuses {
		if s.Status == from {
			if v, ok := updates["status"].(string); ok {
				s.Status = v
			}
			return true, nil
		}
	}
	return false, nil
}

type fakeProposed struct {
	mu   sync.Mutex
	rows []*types.ProposedPage
}

func (f *fakeProposed) Create(ctx context.Context, p *types.ProposedPage) (*types.ProposedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	f.rows = append(f.rows, p)
	return p, nil
}
func (f *fakeProposed) GetByID(ctx context.Context, id uuid.UUID) (*types.ProposedPage, error) {
	return nil, enginerr.ErrNotFound
}
func (f *fakeProposed) List(ctx context.Context, status string, limit int) ([]*types.ProposedPage, error) {
	return f.rows, nil
}
func (f *fakeProposed) ExistsOpenForKeyword(ctx context.Context, keywordID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.KeywordID == keywordID && p.Status == types.ProposedPageStatusProposed {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeProposed) SlugTaken(ctx context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeProposed) UpdateStatusIf(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (bool, error) {
	return false, nil
}

// fakeAnalytics fails for paths listed in failing, succeeds otherwise.
type fakeAnalytics struct {
	mu      sync.Mutex
	failing map[string]bool
	calls   map[string]int
	metrics analytics.Metrics
}

func (f *fakeAnalytics) GetMetrics(ctx context.Context, pagePath string, from, to time.Time) (analytics.Metrics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[pagePath]++
	if f.failing[pagePath] {
		return analytics.Metrics{}, &enginerr.CollaboratorError{
			Collaborator: "analytics", Op: "get_metrics", Err: errors.New("status 502"),
		}
	}
	return f.metrics, nil
}

type fakeBuffer struct {
	pending map[uuid.UUID][2]int
	drained bool
}

func (f *fakeBuffer) IncrImpression(ctx context.Context, blockID uuid.UUID) {}
func (f *fakeBuffer) IncrClick(ctx context.Context, blockID uuid.UUID)     {}
func (f *fakeBuffer) Drain(ctx context.Context, apply func(blockID uuid.UUID, impressions, clicks int) error) error {
	f.drained = true
	for id, c := range f.pending {
		if err := apply(id, c[0], c[1]); err != nil {
			return err
		}
	}
	return nil
}
func (f *fakeBuffer) Close() error { return nil }

// --- harness ---------------------------------------------------------------

type harness struct {
	sched       *Scheduler
	runs        *fakeRuns
	keywords    *fakeKeywords
	snapshots   *fakeSnapshots
	pages       *fakePages
	suggestions *fakeSuggestions
	proposed    *fakeProposed
	blocks      *fakeBlocks
	analytics   *fakeAnalytics
	buffer      *fakeBuffer
}

func newHarness(t *testing.T, cfg config.Engine) *harness {
	t.Helper()
	prevBackoff := analyticsRetryBackoff
	analyticsRetryBackoff = time.Millisecond
	t.Cleanup(func() { analyticsRetryBackoff = prevBackoff })

	log, err := logger.New("test")
	require.NoError(t, err)

	h := &harness{
		runs:        newFakeRuns(),
		keywords:    &fakeKeywords{top: map[uuid.UUID]*types.Keyword{}},
		snapshots:   newFakeSnapshots(),
		pages:       newFakePages(),
		suggestions: newFakeSuggestionRepo(),
		proposed:    &fakeProposed{},
		blocks:      newFakeBlocks(),
		analytics:   &fakeAnalytics{failing: map[string]bool{}, metrics: analytics.Metrics{Impressions: 1500, Clicks: 15, CTR: 1.0, AvgPosition: 8}},
		buffer:      &fakeBuffer{pending: map[uuid.UUID][2]int{}},
	}

	matcher := linking.NewMatcher(cfg.Linking, log)
	gen := suggest.NewGenerator(log, h.keywords, h.suggestions, h.proposed, h.pages, matcher, nil)
	mgr := lifecycle.NewManager(log, h.suggestions, h.proposed, h.blocks, h.pages)

	h.sched = New(log, cfg, h.runs, h.keywords, h.snapshots, &fakeRules{}, &fakeCtas{},
		h.blocks, h.pages, h.analytics, gen, mgr, h.buffer)
	return h
}

// seedSite creates n pages, each served by one keyword.
func (h *harness) seedSite(n int) {
	for i := 0; i < n; i++ {
		page := &types.Page{
			ID:       uuid.New(),
			Path:     fmt.Sprintf("/services/page-%d", i),
			Title:    fmt.Sprintf("Service %d", i),
			BodyHTML: "<p>Short service description.</p>",
		}
		h.pages.add(page)
		kw := &types.Keyword{
			ID:             uuid.New(),
			Phrase:         fmt.Sprintf("service keyword %d", i),
			RelevanceScore: 50 + i,
			VolumeEstimate: 1000,
			PageID:         &page.ID,
		}
		h.keywords.served = append(h.keywords.served, kw)
		h.keywords.top[page.ID] = kw
	}
}

// --- tests -----------------------------------------------------------------

func testConfig() config.Engine {
	cfg := config.Default()
	cfg.Scheduler.Concurrency = 2
	cfg.Scheduler.CollaboratorTimeoutSeconds = 2
	return cfg
}

func TestRunCompletesDespitePartialFailures(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seedSite(10)
	// three pages with a broken analytics source
	h.analytics.failing["/services/page-2"] = true
	h.analytics.failing["/services/page-5"] = true
	h.analytics.failing["/services/page-7"] = true

	run, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, types.RunStatusCompleted, run.Status)
	// pages whose sync failed are left out of the scored count
	assert.Equal(t, 7, run.PagesScored)
	assert.Equal(t, 3, run.ErrorCount)
	assert.Greater(t, run.SuggestionsCreated, 0)

	var recorded []types.RunError
	require.NoError(t, json.Unmarshal(run.Errors, &recorded))
	require.Len(t, recorded, 3)
	for _, re := range recorded {
		assert.Equal(t, "metrics_sync", re.Step)
	}

	// snapshots landed for the healthy pages only
	healthy := 0
	for _, p := range h.pages.pages {
		if snap, _ := h.snapshots.LatestForPage(context.Background(), p.ID); snap != nil {
			healthy++
		}
	}
	assert.Equal(t, 7, healthy)
}

func TestRunRetriesAnalyticsOnce(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seedSite(1)
	h.analytics.failing["/services/page-0"] = true

	run, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, h.analytics.calls["/services/page-0"])
}

func TestRunRejectedWhileAnotherInProgress(t *testing.T) {
	h := newHarness(t, testConfig())
	h.runs.locked = true

	_, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerScheduled)
	require.ErrorIs(t, err, enginerr.ErrRunInProgress)
}

func TestRunReleasesLockForNextPass(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seedSite(2)

	first, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	second, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, types.RunStatusCompleted, second.Status)
}

func TestRunCancellation(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seedSite(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := h.sched.RunDailyOptimization(ctx, types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCancelled, run.Status)
	assert.Zero(t, run.SuggestionsCreated)
	// lock released so the next trigger is not blocked
	next, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, next.Status)
}

func TestRunMarksScoredKeywordsAnalyzed(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seedSite(4)
	h.analytics.failing["/services/page-1"] = true

	run, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.Equal(t, 3, run.PagesScored)

	// every scored keyword got its last_analyzed_at stamp; the failed-sync
	// page's keyword did not
	require.Len(t, h.keywords.analyzed, 3)
	stamped := map[uuid.UUID]bool{}
	for _, id := range h.keywords.analyzed {
		stamped[id] = true
	}
	for _, kw := range h.keywords.served {
		page, err := h.pages.GetPage(context.Background(), *kw.PageID)
		require.NoError(t, err)
		assert.Equal(t, page.Path != "/services/page-1", stamped[kw.ID])
	}
}

func TestRunAutoAppliesHighConfidenceLinks(t *testing.T) {
	h := newHarness(t, testConfig())
	page := &types.Page{
		ID:       uuid.New(),
		Path:     "/services/roofing",
		Title:    "Roofing",
		BodyHTML: "<p>Ask about roof repair cost before booking a visit with our crews.</p>",
	}
	h.pages.add(page)
	kw := &types.Keyword{ID: uuid.New(), Phrase: "roofing", RelevanceScore: 90, VolumeEstimate: 5000, PageID: &page.ID}
	h.keywords.served = []*types.Keyword{kw}
	h.keywords.top[page.ID] = kw

	rules := &fakeRules{rules: []types.LinkingRule{{
		ID:             uuid.New(),
		RuleType:       types.RuleTypeKeywordMatch,
		TriggerPattern: "roof repair cost",
		TargetPagePath: "/pricing",
		Priority:       10,
		MaxOccurrences: 1,
		IsActive:       true,
	}}}
	h.sched.rules = rules

	run, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.Equal(t, 1, run.LinksApplied)

	// the page body now carries the anchor
	got, err := h.pages.GetPage(context.Background(), page.ID)
	require.NoError(t, err)
	assert.Contains(t, got.BodyHTML, `<a href="/pricing">roof repair cost</a>`)

	// only the internal_link suggestion moved to applied
	for _, s := range h.suggestions.rows {
		if s.EnhancementType == types.EnhancementInternalLink {
			assert.Equal(t, types.SuggestionStatusApplied, s.Status)
		} else {
			assert.Equal(t, types.SuggestionStatusPending, s.Status)
		}
	}
}

func TestRunPlacesCTAsAsPendingSuggestions(t *testing.T) {
	h := newHarness(t, testConfig())
	page := &types.Page{
		ID:       uuid.New(),
		Path:     "/services/gutters",
		Title:    "Gutters",
		BodyHTML: "<p>Clean gutters protect the foundation.</p>",
	}
	h.pages.add(page)
	kw := &types.Keyword{ID: uuid.New(), Phrase: "gutters", RelevanceScore: 80, VolumeEstimate: 2000, PageID: &page.ID}
	h.keywords.served = []*types.Keyword{kw}
	h.keywords.top[page.ID] = kw

	h.sched.ctas = &fakeCtas{templates: []types.CtaTemplate{{
		ID:             uuid.New(),
		TargetPagePath: "/contact",
		CtaHTML:        "<p>Book a free estimate.</p>",
		Position:       types.CtaPositionAfterIntro,
		Priority:       10,
		IsActive:       true,
	}}}

	run, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)

	var cta *types.Suggestion
	for _, s := range h.suggestions.rows {
		if s.EnhancementType == types.EnhancementCTA {
			cta = s
		}
	}
	require.NotNil(t, cta)
	// CTA placements are reviewed by a human, never auto-applied
	assert.Equal(t, types.SuggestionStatusPending, cta.Status)
	assert.Contains(t, cta.SuggestedValue, `class="cta-block"`)
	assert.Contains(t, cta.SuggestedValue, "Book a free estimate.")
}

func TestRunProposesPagesCapped(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.MaxProposedPages = 3
	h := newHarness(t, cfg)
	for i := 0; i < 6; i++ {
		h.keywords.unserved = append(h.keywords.unserved, &types.Keyword{
			ID:             uuid.New(),
			Phrase:         fmt.Sprintf("unserved topic %d", i),
			RelevanceScore: 40 + i*10,
			VolumeEstimate: 800,
		})
	}

	run, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 3, run.PagesProposed)
	assert.Len(t, h.proposed.rows, 3)
	for _, p := range h.proposed.rows {
		assert.Equal(t, types.ProposedPageStatusProposed, p.Status)
	}
	// best opportunities first
	assert.Equal(t, "unserved-topic-5", h.proposed.rows[0].Slug)
}

func TestRunFlushesCounterBuffer(t *testing.T) {
	h := newHarness(t, testConfig())
	blockID := uuid.New()
	h.buffer.pending[blockID] = [2]int{12, 3}

	run, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCompleted, run.Status)
	assert.True(t, h.buffer.drained)
	assert.Equal(t, [2]int{12, 3}, h.blocks.counters[blockID])
}

func TestRunErrorListBounded(t *testing.T) {
	h := newHarness(t, testConfig())
	h.seedSite(60)
	for i := 0; i < 60; i++ {
		h.analytics.failing[fmt.Sprintf("/services/page-%d", i)] = true
	}

	run, err := h.sched.RunDailyOptimization(context.Background(), types.RunTriggerManual)
	require.NoError(t, err)
	assert.Equal(t, 60, run.ErrorCount)

	var recorded []types.RunError
	require.NoError(t, json.Unmarshal(run.Errors, &recorded))
	assert.Len(t, recorded, types.MaxRunErrors)
}
