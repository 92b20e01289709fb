// Package router sets up the API routes for the application.
package router

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pairreview/pairreview/consts"
	"github.com/pairreview/pairreview/internal/api/handler"
	"github.com/pairreview/pairreview/internal/api/middleware"
	"github.com/pairreview/pairreview/internal/config"
	"github.com/pairreview/pairreview/internal/localreview"
	"github.com/pairreview/pairreview/internal/orchestrator"
	"github.com/pairreview/pairreview/internal/progress"
	"github.com/pairreview/pairreview/internal/prompt"
	"github.com/pairreview/pairreview/internal/store"
)

// Deps bundles everything the router needs to wire handlers, built once by
// the composition root (cmd/pairreview) and passed in whole.
type Deps struct {
	Config       *config.Config
	Store        store.Store
	Orchestrator *orchestrator.Orchestrator
	Manager      *localreview.Manager
	Bus          *progress.Bus
	Prompts      *prompt.Builder
	DebugMode    bool
}

// Setup configures every route this tool exposes: the local-review session
// lifecycle, analysis triggers, comment/context-file/council CRUD, external
// ingestion, and the MCP machine endpoint. There is no authentication layer
// here - this server binds to localhost for a single operator.
func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(&middleware.LoggerConfig{AccessLog: deps.Config.Logging.AccessLog}))
	r.Use(middleware.CORS([]string{"http://localhost:" + portString(deps.Config.Port)}))
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(deps.DebugMode))
	r.Use(otelgin.Middleware(consts.ServiceName))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	localHandler := handler.NewLocalHandler(deps.Store, deps.Manager, deps.Orchestrator)
	commentHandler := handler.NewCommentHandler(deps.Store)
	contextFileHandler := handler.NewContextFileHandler(deps.Store)
	councilHandler := handler.NewCouncilHandler(deps.Store)
	runHandler := handler.NewRunHandler(deps.Store)
	externalHandler := handler.NewExternalHandler(deps.Store, deps.Orchestrator)
	analyzeHandler := handler.NewAnalyzeHandler(deps.Store, deps.Orchestrator)
	mcpHandler := handler.NewMCPHandler(deps.Store, deps.Manager, deps.Prompts)

	api := r.Group("/api")

	api.POST("/local/start", localHandler.Start)
	api.GET("/local/sessions", localHandler.ListSessions)

	local := api.Group("/local/:reviewId")
	local.GET("", localHandler.Get)
	local.GET("/diff", localHandler.Diff)
	local.POST("/refresh", localHandler.Refresh)
	local.GET("/check-stale", localHandler.CheckStale)

	local.GET("/user-comments", commentHandler.List)
	local.POST("/user-comments", commentHandler.Create)
	local.DELETE("/user-comments", commentHandler.DeleteAll)
	local.PUT("/user-comments/:commentId", commentHandler.Update)
	local.DELETE("/user-comments/:commentId", commentHandler.Delete)
	local.POST("/user-comments/:commentId/restore", commentHandler.Restore)
	local.POST("/suggestions/:suggestionId/adopt", commentHandler.Adopt)

	local.GET("/context-files", contextFileHandler.List)
	local.POST("/context-files", contextFileHandler.Create)
	local.DELETE("/context-files", contextFileHandler.DeleteAll)
	local.PUT("/context-files/:id", contextFileHandler.Update)
	local.DELETE("/context-files/:id", contextFileHandler.Delete)

	local.GET("/councils", councilHandler.List)

	local.GET("/runs/:runId", runHandler.Get)
	local.GET("/runs/:runId/logs", runHandler.Logs)

	local.POST("/analyze", analyzeHandler.Analyze)
	local.POST("/analyze/council", analyzeHandler.AnalyzeCouncil)
	local.POST("/analyze/cancel", localHandler.Cancel)
	local.GET("/analysis-status", localHandler.AnalysisStatus)
	local.GET("/suggestions", localHandler.Suggestions)
	local.GET("/has-ai-suggestions", localHandler.HasAISuggestions)
	local.GET("/ai-suggestions/status", deps.Bus.StreamHandler(func(c *gin.Context) string {
		reviewID, _ := strconv.ParseUint(c.Param("reviewId"), 10, 64)
		return orchestrator.ReviewTopic(uint(reviewID))
	}))

	councils := api.Group("/councils")
	councils.POST("", councilHandler.Create)
	councils.PUT("/:id", councilHandler.Update)
	councils.DELETE("/:id", councilHandler.Delete)

	api.POST("/analyses/results", externalHandler.Submit)

	r.POST("/mcp", mcpHandler.Handle)
}

func portString(port int) string {
	if port == 0 {
		return "3000"
	}
	return strconv.Itoa(port)
}
