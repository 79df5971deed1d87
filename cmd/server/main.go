package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/atiati82/AI-CMS-sub002/internal/config"
	"github.com/atiati82/AI-CMS-sub002/internal/data/db"
	"github.com/atiati82/AI-CMS-sub002/internal/data/repos"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/lifecycle"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/linking"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/scheduler"
	"github.com/atiati82/AI-CMS-sub002/internal/engine/suggest"
	enginehttp "github.com/atiati82/AI-CMS-sub002/internal/http"
	httpH "github.com/atiati82/AI-CMS-sub002/internal/http/handlers"
	"github.com/atiati82/AI-CMS-sub002/internal/pagestore"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/analytics"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/counters"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/envutil"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/openai"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	cfg, err := config.Load(envutil.Get("ENGINE_CONFIG_PATH", "optimizer.yaml"))
	if err != nil {
		log.Error("Config load failed", "error", err)
		os.Exit(1)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	keywordRepo := repos.NewKeywordRepo(thePG, log)
	snapshotRepo := repos.NewMetricsSnapshotRepo(thePG, log)
	suggestionRepo := repos.NewSuggestionRepo(thePG, log)
	proposedRepo := repos.NewProposedPageRepo(thePG, log)
	blockRepo := repos.NewContentBlockRepo(thePG, log)
	ruleRepo := repos.NewLinkingRuleRepo(thePG, log)
	ctaRepo := repos.NewCtaTemplateRepo(thePG, log)
	runRepo := repos.NewOptimizationRunRepo(thePG, log)
	pages := pagestore.NewGormStore(thePG, log)

	// Collaborators: missing config degrades the feature, not the process.
	analyticsClient, err := analytics.NewHTTPClient(log)
	if err != nil {
		log.Warn("Analytics collaborator disabled", "error", err)
		analyticsClient = nil
	}
	aiClient, err := openai.NewClient(log)
	if err != nil {
		log.Warn("Content generation collaborator disabled", "error", err)
		aiClient = nil
	}
	counterBuf, err := counters.NewRedisBuffer(log)
	if err != nil {
		log.Warn("Counter buffer disabled, counting straight to postgres", "error", err)
		counterBuf = nil
	}

	// Engine
	matcher := linking.NewMatcher(cfg.Linking, log)
	generator := suggest.NewGenerator(log, keywordRepo, suggestionRepo, proposedRepo, pages, matcher, aiClient)
	lifecycleMgr := lifecycle.NewManager(log, suggestionRepo, proposedRepo, blockRepo, pages)
	sched := scheduler.New(log, cfg, runRepo, keywordRepo, snapshotRepo, ruleRepo, ctaRepo,
		blockRepo, pages, analyticsClient, generator, lifecycleMgr, counterBuf)

	stopCron, err := sched.StartCron()
	if err != nil {
		log.Error("Cron setup failed", "error", err)
		os.Exit(1)
	}
	defer stopCron()

	// HTTP
	srv := enginehttp.NewServer(enginehttp.RouterConfig{
		Log:                 log,
		OptimizationHandler: httpH.NewOptimizationHandler(sched, runRepo),
		SuggestionHandler:   httpH.NewSuggestionHandler(suggestionRepo, lifecycleMgr),
		ProposedPageHandler: httpH.NewProposedPageHandler(proposedRepo, lifecycleMgr),
		BlockHandler:        httpH.NewBlockHandler(blockRepo, lifecycleMgr, counterBuf),
		HealthHandler:       httpH.NewHealthHandler(),
	})

	port := envutil.Get("PORT", "8080")
	log.Info("Starting server", "port", port)
	if err := srv.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
