package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.InDelta(t, 1.0,
		cfg.Scoring.WeightRelevance+cfg.Scoring.WeightDifficulty+
			cfg.Scoring.WeightVolume+cfg.Scoring.WeightMetrics, 1e-9)
	assert.Equal(t, 5, cfg.Linking.MaxLinksPerPage)
	assert.Equal(t, 200, cfg.Linking.MinLinkDistance)
	assert.Equal(t, 10, cfg.Scheduler.TopPages)
	assert.Equal(t, []string{"internal_link"}, cfg.Scheduler.AutoApplyTypes)
	assert.Equal(t, 15*time.Second, cfg.Scheduler.CollaboratorTimeout())
	assert.Equal(t, 30*time.Minute, cfg.Scheduler.RunStaleAfter())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	raw := []byte(`
scoring:
  weight_relevance: 0.4
linking:
  max_links_per_page: 3
scheduler:
  top_pages: 25
  cron_spec: "0 0 2 * * *"
`)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.Scoring.WeightRelevance)
	assert.Equal(t, 3, cfg.Linking.MaxLinksPerPage)
	assert.Equal(t, 25, cfg.Scheduler.TopPages)
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.CronSpec)
	// untouched keys keep defaults
	assert.Equal(t, 0.25, cfg.Scoring.WeightDifficulty)
	assert.Equal(t, 200, cfg.Linking.MinLinkDistance)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scheduler:\n  top_pages: 25\n"), 0o600))

	t.Setenv("OPT_TOP_PAGES", "7")
	t.Setenv("LINK_MAX_PER_PAGE", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Scheduler.TopPages)
	assert.Equal(t, 2, cfg.Linking.MaxLinksPerPage)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring: ["), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
