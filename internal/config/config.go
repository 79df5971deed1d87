package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/atiati82/AI-CMS-sub002/internal/platform/envutil"
)

// Scoring holds the opportunity-score weights. They should sum to 1 but the
// scorer clamps its output either way.
type Scoring struct {
	WeightRelevance  float64 `yaml:"weight_relevance"`
	WeightDifficulty float64 `yaml:"weight_difficulty"`
	WeightVolume     float64 `yaml:"weight_volume"`
	WeightMetrics    float64 `yaml:"weight_metrics"`
}

type Linking struct {
	MaxLinksPerPage int `yaml:"max_links_per_page"`
	MinLinkDistance int `yaml:"min_link_distance"`
}

type Scheduler struct {
	TopPages                   int      `yaml:"top_pages"`
	MaxProposedPages           int      `yaml:"max_proposed_pages"`
	Concurrency                int      `yaml:"concurrency"`
	AutoApplyThreshold         int      `yaml:"auto_apply_threshold"`
	AutoApplyTypes             []string `yaml:"auto_apply_types"`
	CronSpec                   string   `yaml:"cron_spec"`
	CollaboratorTimeoutSeconds int      `yaml:"collaborator_timeout_seconds"`
	RunStaleAfterMinutes       int      `yaml:"run_stale_after_minutes"`
	MetricsWindowDays          int      `yaml:"metrics_window_days"`
}

func (s Scheduler) CollaboratorTimeout() time.Duration {
	return time.Duration(s.CollaboratorTimeoutSeconds) * time.Second
}

func (s Scheduler) RunStaleAfter() time.Duration {
	return time.Duration(s.RunStaleAfterMinutes) * time.Minute
}

type Engine struct {
	Scoring   Scoring   `yaml:"scoring"`
	Linking   Linking   `yaml:"linking"`
	Scheduler Scheduler `yaml:"scheduler"`
}

func Default() Engine {
	return Engine{
		Scoring: Scoring{
			WeightRelevance:  0.3,
			WeightDifficulty: 0.25,
			WeightVolume:     0.2,
			WeightMetrics:    0.25,
		},
		Linking: Linking{
			MaxLinksPerPage: 5,
			MinLinkDistance: 200,
		},
		Scheduler: Scheduler{
			TopPages:                   10,
			MaxProposedPages:           3,
			Concurrency:                5,
			AutoApplyThreshold:         90,
			AutoApplyTypes:             []string{"internal_link"},
			CronSpec:                   "0 0 4 * * *",
			CollaboratorTimeoutSeconds: 15,
			RunStaleAfterMinutes:       30,
			MetricsWindowDays:          28,
		},
	}
}

// Load reads path when it exists, layering the file over defaults and env
// overrides over the file. A missing file is not an error.
func Load(path string) (Engine, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Engine) {
	cfg.Scoring.WeightRelevance = envutil.Float("SCORE_WEIGHT_RELEVANCE", cfg.Scoring.WeightRelevance)
	cfg.Scoring.WeightDifficulty = envutil.Float("SCORE_WEIGHT_DIFFICULTY", cfg.Scoring.WeightDifficulty)
	cfg.Scoring.WeightVolume = envutil.Float("SCORE_WEIGHT_VOLUME", cfg.Scoring.WeightVolume)
	cfg.Scoring.WeightMetrics = envutil.Float("SCORE_WEIGHT_METRICS", cfg.Scoring.WeightMetrics)

	cfg.Linking.MaxLinksPerPage = envutil.Int("LINK_MAX_PER_PAGE", cfg.Linking.MaxLinksPerPage)
	cfg.Linking.MinLinkDistance = envutil.Int("LINK_MIN_DISTANCE", cfg.Linking.MinLinkDistance)

	cfg.Scheduler.TopPages = envutil.Int("OPT_TOP_PAGES", cfg.Scheduler.TopPages)
	cfg.Scheduler.MaxProposedPages = envutil.Int("OPT_MAX_PROPOSED_PAGES", cfg.Scheduler.MaxProposedPages)
	cfg.Scheduler.Concurrency = envutil.Int("OPT_CONCURRENCY", cfg.Scheduler.Concurrency)
	cfg.Scheduler.AutoApplyThreshold = envutil.Int("OPT_AUTO_APPLY_THRESHOLD", cfg.Scheduler.AutoApplyThreshold)
	cfg.Scheduler.CronSpec = envutil.Get("OPT_CRON_SPEC", cfg.Scheduler.CronSpec)
	cfg.Scheduler.MetricsWindowDays = envutil.Int("OPT_METRICS_WINDOW_DAYS", cfg.Scheduler.MetricsWindowDays)
	cfg.Scheduler.CollaboratorTimeoutSeconds = envutil.Int("OPT_COLLABORATOR_TIMEOUT_SECONDS", cfg.Scheduler.CollaboratorTimeoutSeconds)
	cfg.Scheduler.RunStaleAfterMinutes = envutil.Int("OPT_RUN_STALE_AFTER_MINUTES", cfg.Scheduler.RunStaleAfterMinutes)
}
