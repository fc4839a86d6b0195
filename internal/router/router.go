package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/config"
	"github.com/stemsi/gscribe-backend/internal/handler"
	"github.com/stemsi/gscribe-backend/internal/middleware"
	"github.com/stemsi/gscribe-backend/internal/response"
)

// paperMaxAge is how long browsers may keep an exam paper.
const paperMaxAge = 5 * time.Minute

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Exam         *handler.ExamHandler
	ExamInstance *handler.ExamInstanceHandler
	Health       *handler.HealthHandler
}

// Identity holds one verifier per token audience.
type Identity struct {
	Setter   middleware.IdentityVerifier
	Examinee middleware.IdentityVerifier
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter may be nil.
func SetupRouter(
	handlers *Handlers,
	identity Identity,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", middleware.HeaderAuthentication, "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the request log and every envelope carry it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	requireSetter := middleware.RequireIdentity(identity.Setter)
	requireExaminee := middleware.RequireIdentity(identity.Examinee)

	// ─── 1. Spreadsheet Authorization (Setter, Rate Limited) ───────────
	auth := router.Group("/authenticate")
	if authLimiter != nil {
		auth.Use(authLimiter.Middleware())
	}
	auth.Use(requireSetter)
	{
		auth.POST("", handlers.Auth.Authenticate)
		auth.GET("", handlers.Auth.CheckAuthentication)
	}

	// ─── 2. Exams ──────────────────────────────────────────────────────
	exam := router.Group("/exam")
	{
		// Paper setter
		exam.POST("", requireSetter, handlers.Exam.CreateExam)
		exam.GET("/all", requireSetter, handlers.Exam.ListExams)
		exam.GET("/:id", requireSetter, handlers.Exam.GetExam)

		// Examinee
		exam.GET("/:id/paper", requireExaminee, middleware.CacheControl(paperMaxAge), handlers.Exam.GetPaper)
		exam.POST("/start", requireExaminee, handlers.ExamInstance.StartExam)
		exam.POST("/submit", requireExaminee, handlers.ExamInstance.SubmitExam)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}
