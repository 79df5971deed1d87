package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/atiati82/AI-CMS-sub002/internal/http/handlers"
	httpMW "github.com/atiati82/AI-CMS-sub002/internal/http/middleware"
	"github.com/atiati82/AI-CMS-sub002/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	OptimizationHandler *httpH.OptimizationHandler
	SuggestionHandler   *httpH.SuggestionHandler
	ProposedPageHandler *httpH.ProposedPageHandler
	BlockHandler        *httpH.BlockHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Optimization runs
		if cfg.OptimizationHandler != nil {
			api.POST("/optimization/run", cfg.OptimizationHandler.TriggerRun)
			api.GET("/optimization/runs", cfg.OptimizationHandler.ListRuns)
			api.GET("/optimization/runs/:id", cfg.OptimizationHandler.GetRun)
		}

		// Suggestion review
		if cfg.SuggestionHandler != nil {
			api.GET("/suggestions", cfg.SuggestionHandler.ListSuggestions)
			api.POST("/suggestions/:id/accept", cfg.SuggestionHandler.AcceptSuggestion)
			api.POST("/suggestions/:id/reject", cfg.SuggestionHandler.RejectSuggestion)
			api.POST("/suggestions/:id/apply", cfg.SuggestionHandler.ApplySuggestion)
		}

		// Proposed pages
		if cfg.ProposedPageHandler != nil {
			api.GET("/proposed-pages", cfg.ProposedPageHandler.ListProposedPages)
			api.POST("/proposed-pages/:id/approve", cfg.ProposedPageHandler.ApproveProposedPage)
			api.POST("/proposed-pages/:id/reject", cfg.ProposedPageHandler.RejectProposedPage)
			api.POST("/proposed-pages/:id/create", cfg.ProposedPageHandler.CreateProposedPage)
		}

		// Content blocks and engagement counters
		if cfg.BlockHandler != nil {
			// the :id on /blocks/:id/live is the page id, not a block id;
			// gin needs one param name per segment position
			api.GET("/blocks/:id/live", cfg.BlockHandler.ListPublishedBlocks)
			api.POST("/blocks/:id/publish", cfg.BlockHandler.PublishBlock)
			api.POST("/blocks/:id/archive", cfg.BlockHandler.ArchiveBlock)
			api.POST("/blocks/:id/impression", cfg.BlockHandler.RecordImpression)
			api.POST("/blocks/:id/click", cfg.BlockHandler.RecordClick)
		}
	}

	return r
}
