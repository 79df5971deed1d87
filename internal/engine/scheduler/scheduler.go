package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/atiati82/AI-CMS-sub002/internal/config"
	"github.com/atiati82/AI-CMS-sub002/internal/data/repos"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/lifecycle"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/scoring"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/suggest"
	"github.com/atiati82/AI-CMS-sub002/internal/pagestore"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/analytics"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/counters"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

var analyticsRetryBackoff = 500 * time.Millisecond

// Scheduler drives the nightly optimization pass: metrics sync, opportunity
// scoring, suggestion generation with bounded auto-apply, page proposals and
// the counter flush. One pass runs at a time across all instances; the
// in_progress run row is the lock.
type Scheduler struct {
	log       *logger.Logger
	cfg       config.Engine
	runs      repos.OptimizationRunRepo
	keywords  repos.KeywordRepo
	snapshots repos.MetricsSnapshotRepo
	rules     repos.LinkingRuleRepo
	ctas      repos.CtaTemplateRepo
	blocks    repos.ContentBlockRepo
	pages     pagestore.Store
	analytics analytics.Client
	generator *suggest.Generator
	lifecycle *lifecycle.Manager
	counters  counters.Buffer
}

func New(
	baseLog *logger.Logger,
	cfg config.Engine,
	runs repos.OptimizationRunRepo,
	keywords repos.KeywordRepo,
	snapshots repos.MetricsSnapshotRepo,
	rules repos.LinkingRuleRepo,
	ctas repos.CtaTemplateRepo,
	blocks repos.ContentBlockRepo,
	pages pagestore.Store,
	analyticsClient analytics.Client,
	generator *suggest.Generator,
	lifecycleMgr *lifecycle.Manager,
	counterBuf counters.Buffer,
) *Scheduler {
	return &Scheduler{
		log:       baseLog.With("service", "OptimizationScheduler"),
		cfg:       cfg,
		runs:      runs,
		keywords:  keywords,
		snapshots: snapshots,
		rules:     rules,
		ctas:      ctas,
		blocks:    blocks,
		pages:     pages,
		analytics: analyticsClient,
		generator: generator,
		lifecycle: lifecycleMgr,
		counters:  counterBuf,
	}
}

// runTally accumulates counters and the bounded error list across the
// concurrent steps of one pass.
type runTally struct {
	mu                 sync.Mutex
	pagesScored        int
	suggestionsCreated int
	linksApplied       int
	pagesProposed      int
	errorCount         int
	errs               []types.RunError
	syncFailed         map[uuid.UUID]struct{}
}

func (t *runTally) record(step, target string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errorCount++
	if len(t.errs) < types.MaxRunErrors {
		t.errs = append(t.errs, types.RunError{Step: step, Target: target, Error: err.Error()})
	}
}

func (t *runTally) add(fn func(*runTally)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t)
}

// markSyncFailed flags a page whose metrics sync produced no snapshot this
// run; the scoring step leaves those pages out of the scored count.
func (t *runTally) markSyncFailed(pageID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.syncFailed == nil {
		t.syncFailed = map[uuid.UUID]struct{}{}
	}
	t.syncFailed[pageID] = struct{}{}
}

func (t *runTally) syncFailedFor(pageID uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.syncFailed[pageID]
	return ok
}

// ruleSet is the run-level snapshot of linking rules and CTA templates.
type ruleSet struct {
	rules []types.LinkingRule
	ctas  []types.CtaTemplate
}

// RunDailyOptimization executes one full pass. Per-item failures are recorded
// on the run and do not abort it; the pass still finishes completed. Returns
// ErrRunInProgress when another healthy run holds the lock. Cancelling ctx
// stops between steps and finalizes the run as cancelled.
func (s *Scheduler) RunDailyOptimization(ctx context.Context, trigger string) (*types.OptimizationRun, error) {
	run, err := s.runs.StartRun(ctx, trigger, s.cfg.Scheduler.RunStaleAfter())
	if err != nil {
		return nil, err
	}
	s.log.Info("optimization run started", "run_id", run.ID.String(), "trigger", trigger)

	stopHeartbeat := s.startHeartbeat(run.ID)
	defer stopHeartbeat()

	tally := &runTally{}

	// snapshot rules and CTA templates up front so the whole pass sees one
	// consistent rule view
	var snap ruleSet
	snap.rules, err = s.rules.ListActive(ctx)
	if err != nil {
		return s.finalize(run, types.RunStatusFailed, tally, err)
	}
	snap.ctas, err = s.ctas.ListActive(ctx)
	if err != nil {
		// CTA placement is additive; run without it rather than abort
		s.log.Warn("cta template snapshot failed, skipping cta placement",
			"run_id", run.ID.String(), "error", err)
		tally.record("rule_snapshot", "cta_template", err)
		snap.ctas = nil
	}

	steps := []struct {
		name string
		fn   func(context.Context, *runTally, ruleSet)
	}{
		{"metrics_sync", s.stepMetricsSync},
		{"scoring", s.stepScoreAndGenerate},
		{"propose_pages", s.stepProposePages},
		{"counter_flush", s.stepCounterFlush},
	}
	for _, step := range steps {
		if ctx.Err() != nil {
			s.log.Warn("optimization run cancelled", "run_id", run.ID.String(), "before_step", step.name)
			return s.finalize(run, types.RunStatusCancelled, tally, nil)
		}
		step.fn(ctx, tally, snap)
	}
	if ctx.Err() != nil {
		return s.finalize(run, types.RunStatusCancelled, tally, nil)
	}
	return s.finalize(run, types.RunStatusCompleted, tally, nil)
}

func (s *Scheduler) startHeartbeat(runID uuid.UUID) func() {
	interval := s.cfg.Scheduler.RunStaleAfter() / 3
	if interval <= 0 {
		interval = time.Minute
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				if err := s.runs.Heartbeat(ctx, runID); err != nil {
					s.log.Warn("run heartbeat failed", "run_id", runID.String(), "error", err)
				}
				cancel()
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// stepMetricsSync pulls a fresh snapshot for every page. One failed page is
// one run error, not a failed run.
func (s *Scheduler) stepMetricsSync(ctx context.Context, tally *runTally, _ ruleSet) {
	if s.analytics == nil {
		s.log.Warn("analytics collaborator not configured, skipping metrics sync")
		return
	}
	pages, err := s.pages.ListPages(ctx)
	if err != nil {
		tally.record("metrics_sync", "", err)
		return
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -s.cfg.Scheduler.MetricsWindowDays)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for _, page := range pages {
		page := page
		g.Go(func() error {
			m, err := s.fetchMetrics(gctx, page.Path, from, to)
			if err != nil {
				tally.record("metrics_sync", page.Path, err)
				tally.markSyncFailed(page.ID)
				return nil
			}
			snap := &types.MetricsSnapshot{
				PageID:      page.ID,
				WindowStart: from,
				WindowEnd:   to,
				Impressions: m.Impressions,
				Clicks:      m.Clicks,
				CTR:         m.CTR,
				AvgPosition: m.AvgPosition,
			}
			if _, err := s.snapshots.Create(gctx, []*types.MetricsSnapshot{snap}); err != nil {
				tally.record("metrics_sync", page.Path, err)
				tally.markSyncFailed(page.ID)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// fetchMetrics applies the collaborator timeout per attempt and retries once.
func (s *Scheduler) fetchMetrics(ctx context.Context, pagePath string, from, to time.Time) (analytics.Metrics, error) {
	attempt := func() (analytics.Metrics, error) {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Scheduler.CollaboratorTimeout())
		defer cancel()
		return s.analytics.GetMetrics(callCtx, pagePath, from, to)
	}
	m, err := attempt()
	if err == nil || ctx.Err() != nil {
		return m, err
	}
	select {
	case <-ctx.Done():
		return analytics.Metrics{}, ctx.Err()
	case <-time.After(analyticsRetryBackoff):
	}
	return attempt()
}

// stepScoreAndGenerate ranks served keywords by opportunity and generates
// suggestions for the top pages. Auto-apply is restricted to the configured
// type allowlist at or above the confidence threshold.
func (s *Scheduler) stepScoreAndGenerate(ctx context.Context, tally *runTally, rs ruleSet) {
	served, err := s.keywords.ListServed(ctx)
	if err != nil {
		tally.record("scoring", "", err)
		return
	}

	inputs := make([]scoring.ScoredKeyword, 0, len(served))
	for _, kw := range served {
		if kw.PageID == nil {
			continue
		}
		if tally.syncFailedFor(*kw.PageID) {
			continue
		}
		page, err := s.pages.GetPage(ctx, *kw.PageID)
		if err != nil {
			tally.record("scoring", kw.Phrase, err)
			continue
		}
		snap, err := s.snapshots.LatestForPage(ctx, page.ID)
		if err != nil {
			tally.record("scoring", kw.Phrase, err)
			continue
		}
		inputs = append(inputs, scoring.ScoredKeyword{Keyword: kw, Page: page, Snapshot: snap})
	}

	ranked := scoring.Rank(s.cfg.Scoring, inputs)
	tally.add(func(t *runTally) { t.pagesScored = len(ranked) })

	if len(ranked) > 0 {
		analyzed := make([]uuid.UUID, 0, len(ranked))
		for _, sk := range ranked {
			analyzed = append(analyzed, sk.Keyword.ID)
		}
		if err := s.keywords.MarkAnalyzed(ctx, analyzed, time.Now().UTC()); err != nil {
			tally.record("scoring", "mark_analyzed", err)
		}
	}

	topPages := make([]uuid.UUID, 0, s.cfg.Scheduler.TopPages)
	seen := map[uuid.UUID]struct{}{}
	for _, sk := range ranked {
		if len(topPages) >= s.cfg.Scheduler.TopPages {
			break
		}
		if _, dup := seen[sk.Page.ID]; dup {
			continue
		}
		seen[sk.Page.ID] = struct{}{}
		topPages = append(topPages, sk.Page.ID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for _, pageID := range topPages {
		pageID := pageID
		g.Go(func() error {
			created, err := s.generator.GenerateForPage(gctx, pageID, rs.rules, rs.ctas)
			if err != nil {
				tally.record("generate", pageID.String(), err)
				return nil
			}
			tally.add(func(t *runTally) { t.suggestionsCreated += len(created) })
			for _, sug := range created {
				if !s.autoApplicable(sug) {
					continue
				}
				if _, _, err := s.lifecycle.ApplySuggestion(gctx, sug.ID); err != nil {
					tally.record("auto_apply", sug.ID.String(), err)
					continue
				}
				tally.add(func(t *runTally) { t.linksApplied++ })
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) autoApplicable(sug *types.Suggestion) bool {
	if sug.Status != types.SuggestionStatusPending || sug.Confidence < s.cfg.Scheduler.AutoApplyThreshold {
		return false
	}
	for _, t := range s.cfg.Scheduler.AutoApplyTypes {
		if sug.EnhancementType == t {
			return true
		}
	}
	return false
}

// stepProposePages drafts at most MaxProposedPages proposals from unserved
// keywords, best opportunity first. Pages are never created here.
func (s *Scheduler) stepProposePages(ctx context.Context, tally *runTally, _ ruleSet) {
	unserved, err := s.keywords.ListUnserved(ctx)
	if err != nil {
		tally.record("propose_pages", "", err)
		return
	}

	inputs := make([]scoring.ScoredKeyword, 0, len(unserved))
	for _, kw := range unserved {
		inputs = append(inputs, scoring.ScoredKeyword{Keyword: kw})
	}
	ranked := scoring.Rank(s.cfg.Scoring, inputs)

	proposed := 0
	for _, sk := range ranked {
		if proposed >= s.cfg.Scheduler.MaxProposedPages || ctx.Err() != nil {
			break
		}
		p, err := s.generator.GenerateProposedPage(ctx, sk.Keyword)
		if err != nil {
			tally.record("propose_pages", sk.Keyword.Phrase, err)
			continue
		}
		if p != nil {
			proposed++
		}
	}
	tally.add(func(t *runTally) { t.pagesProposed = proposed })
}

// stepCounterFlush drains the redis counter buffer into postgres.
func (s *Scheduler) stepCounterFlush(ctx context.Context, tally *runTally, _ ruleSet) {
	if s.counters == nil {
		return
	}
	err := s.counters.Drain(ctx, func(blockID uuid.UUID, impressions, clicks int) error {
		return s.blocks.AddCounters(ctx, blockID, impressions, clicks)
	})
	if err != nil {
		tally.record("counter_flush", "", err)
	}
}

func (s *Scheduler) finalize(run *types.OptimizationRun, status string, tally *runTally, cause error) (*types.OptimizationRun, error) {
	tally.mu.Lock()
	if cause != nil {
		tally.errorCount++
		if len(tally.errs) < types.MaxRunErrors {
			tally.errs = append(tally.errs, types.RunError{Step: "run", Error: cause.Error()})
		}
	}
	rawErrs, mErr := json.Marshal(tally.errs)
	if mErr != nil {
		rawErrs = []byte("[]")
	}
	updates := map[string]interface{}{
		"status":              status,
		"pages_scored":        tally.pagesScored,
		"suggestions_created": tally.suggestionsCreated,
		"links_applied":       tally.linksApplied,
		"pages_proposed":      tally.pagesProposed,
		"error_count":         tally.errorCount,
		"errors":              rawErrs,
	}
	tally.mu.Unlock()

	// the run row must reflect the outcome even when ctx is dead
	writeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.runs.Finalize(writeCtx, run.ID, updates); err != nil {
		s.log.Error("run finalize failed", "run_id", run.ID.String(), "error", err)
		if cause == nil {
			cause = err
		}
	}

	out, err := s.runs.GetByID(writeCtx, run.ID)
	if err != nil {
		if cause != nil {
			return nil, cause
		}
		return nil, err
	}
	s.log.Info("optimization run finished",
		"run_id", out.ID.String(),
		"status", out.Status,
		"pages_scored", out.PagesScored,
		"suggestions_created", out.SuggestionsCreated,
		"links_applied", out.LinksApplied,
		"pages_proposed", out.PagesProposed,
		"error_count", out.ErrorCount)
	return out, cause
}

func (s *Scheduler) concurrency() int {
	if s.cfg.Scheduler.Concurrency > 0 {
		return s.cfg.Scheduler.Concurrency
	}
	return 1
}
