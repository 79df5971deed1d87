package scoring

import (
	"math"
	"sort"

	"github.com/atiati82/AI-CMS-sub002/internal/config"
	types "github.com/atiati82/AI-CMS-sub002/internal/domain"
)

// Thresholds for the untapped-demand signal: pages that already rank widely
// (impressions) but convert poorly (ctr) are the cheapest wins.
const (
	highImpressions = 1000
	lowCTRPercent   = 2.0

	metricsFactorUntapped = 80.0
	metricsFactorNeutral  = 50.0
	metricsFactorServed   = 20.0
)

// Score combines keyword metadata with the page's latest metrics snapshot
// into a single 0-100 opportunity score. Pure and deterministic: same inputs,
// same output, no side effects. Missing page or snapshot degrades to neutral
// defaults instead of failing.
func Score(cfg config.Scoring, kw *types.Keyword, page *types.Page, snap *types.MetricsSnapshot) float64 {
	if kw == nil {
		return 0
	}

	relevance := clamp(float64(kw.RelevanceScore), 0, 100)
	ease := clamp(100-float64(kw.DifficultyScore), 0, 100)

	volume := float64(kw.VolumeEstimate)
	if volume < 0 {
		volume = 0
	}
	volumeFactor := math.Min(100, math.Log10(volume+1)*25)

	metricsFactor := metricsFactorNeutral
	if snap != nil {
		if snap.Impressions > highImpressions && snap.CTR < lowCTRPercent {
			metricsFactor = metricsFactorUntapped
		} else {
			metricsFactor = metricsFactorServed
		}
	}

	score := cfg.WeightRelevance*relevance +
		cfg.WeightDifficulty*ease +
		cfg.WeightVolume*volumeFactor +
		cfg.WeightMetrics*metricsFactor
	return clamp(score, 0, 100)
}

// ScoredKeyword pairs a keyword with its computed opportunity score for
// ranking. Page and Snapshot are carried along so downstream steps do not
// re-fetch them.
type ScoredKeyword struct {
	Keyword  *types.Keyword
	Page     *types.Page
	Snapshot *types.MetricsSnapshot
	Score    float64
}

// Rank scores every input and returns them sorted best-first. Ties break on
// keyword phrase so the ordering is stable across runs.
func Rank(cfg config.Scoring, inputs []ScoredKeyword) []ScoredKeyword {
	out := make([]ScoredKeyword, 0, len(inputs))
	for _, in := range inputs {
		in.Score = Score(cfg, in.Keyword, in.Page, in.Snapshot)
		out = append(out, in)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return phraseOf(out[i].Keyword) < phraseOf(out[j].Keyword)
	})
	return out
}

// CTRTrend reports the click-through delta between the two most recent
// windows, in percentage points. Zero when there is no history to compare.
func CTRTrend(latest, previous *types.MetricsSnapshot) float64 {
	if latest == nil || previous == nil {
		return 0
	}
	return latest.CTR - previous.CTR
}

// phraseOf keeps the tiebreaker total when an input carries a nil keyword,
// which Score already tolerates.
func phraseOf(k *types.Keyword) string {
	if k == nil {
		return ""
	}
	return k.Phrase
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
