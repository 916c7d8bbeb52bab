package router

import (
	"net/http"
	"time"

	"github.com/astraid/intervox-backend/internal/config"
	"github.com/astraid/intervox-backend/internal/handler"
	"github.com/astraid/intervox-backend/internal/middleware"
	"github.com/astraid/intervox-backend/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Interview *handler.InterviewHandler
	Peer      *handler.PeerHandler
	Candidate *handler.CandidateHandler
	Admin     *handler.AdminHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for code guessing on the connect endpoint
	// (10 attempts per minute per IP).
	connectLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 1. Interview Group (Interviewer Client) ───────────────────────
	interviews := router.Group("/api/v1/interviews")
	{
		interviews.POST("", handlers.Interview.CreateInterview)
		interviews.GET("/:interview_id", handlers.Interview.GetInterview)
		interviews.POST("/:interview_id/user-info", handlers.Interview.SaveUserInfo)
		interviews.POST("/:interview_id/draft", handlers.Interview.UpdateDraftAnswer)
	}

	// ─── 2. Peer Group (Candidate Client) ──────────────────────────────
	peer := router.Group("/api/v1/peer")
	{
		peer.POST("/connect", connectLimiter.Middleware(), handlers.Peer.Connect)
		peer.POST("/interviews/:interview_id/answer", handlers.Peer.SubmitAnswer)
		peer.POST("/interviews/:interview_id/advance", handlers.Peer.AdvanceQuestion)
	}

	// ─── 3. Candidate History ──────────────────────────────────────────
	candidates := router.Group("/api/v1")
	{
		candidates.GET("/candidates/:email/history", handlers.Candidate.GetHistory)
		candidates.POST("/history/analyze", handlers.Candidate.AnalyzeHistory)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/interviews/:interview_id/stream", handlers.WS.InterviewStream)
	}

	// ─── 5. Admin Group ────────────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	{
		adminAPI.DELETE("/data", handlers.Admin.WipeData)
	}

	return router
}
