package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/primeivy/portal-backend/internal/config"
	"github.com/primeivy/portal-backend/internal/handler"
	"github.com/primeivy/portal-backend/internal/middleware"
	"github.com/primeivy/portal-backend/internal/response"
	"github.com/primeivy/portal-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth *handler.AuthHandler
	Exam *handler.ExamHandler
	WS   *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
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

	// Compress large JSON bodies (the paper especially). The middleware
	// skips WebSocket upgrades on its own.
	router.Use(middleware.Brotli())

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/register", handlers.Auth.Register)

		// Authenticated profile routes
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
		auth.POST("/logout", middleware.RequireJWT(authService), handlers.Auth.Logout)
	}

	// ─── 2. Exam Group (JWT + Single Device) ───────────────────────────
	examAPI := router.Group("/api/v1/exam")
	examAPI.Use(
		middleware.RequireJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		examAPI.GET("/paper",
			middleware.CacheControl(int(cfg.QuestionCacheTTL.Seconds())),
			handlers.Exam.GetPaper)
		examAPI.POST("/session", handlers.Exam.StartOrResume)
		examAPI.GET("/session", handlers.Exam.GetState)
		examAPI.PUT("/session/responses", handlers.Exam.SubmitResponse)
		examAPI.POST("/session/flags", handlers.Exam.ToggleFlag)
		examAPI.POST("/session/navigate", handlers.Exam.Navigate)
		examAPI.POST("/session/advance", handlers.Exam.Advance)
		examAPI.POST("/session/back", handlers.Exam.Back)
		examAPI.POST("/session/review", handlers.Exam.Review)
		examAPI.POST("/session/submit-module", handlers.Exam.SubmitModule)
		examAPI.POST("/session/resume", handlers.Exam.Resume)
		examAPI.POST("/session/retake", handlers.Exam.Retake)
		examAPI.GET("/report", handlers.Exam.GetReport)
		examAPI.GET("/history", handlers.Exam.GetHistory)
	}

	// ─── 3. WebSocket Group (WS Auth via query token) ──────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/exam/stream", handlers.WS.SessionStream)
	}

	return router
}
