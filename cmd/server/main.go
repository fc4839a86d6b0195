package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/gscribe-backend/internal/config"
	"github.com/stemsi/gscribe-backend/internal/database"
	"github.com/stemsi/gscribe-backend/internal/handler"
	"github.com/stemsi/gscribe-backend/internal/identity"
	"github.com/stemsi/gscribe-backend/internal/logger"
	"github.com/stemsi/gscribe-backend/internal/middleware"
	"github.com/stemsi/gscribe-backend/internal/repository"
	"github.com/stemsi/gscribe-backend/internal/router"
	"github.com/stemsi/gscribe-backend/internal/service"
	"github.com/stemsi/gscribe-backend/internal/sheets"
	"github.com/stemsi/gscribe-backend/internal/validator"
	"github.com/stemsi/gscribe-backend/internal/worker"
)

const identityClient = 10 * time.Second

// stores is the persistence layer chosen by STORE_DRIVER.
type stores struct {
	exams     service.ExamStore
	questions service.QuestionStore
	instances service.ExamInstanceStore
	answers   service.AnswerStore
	tokens    service.UserTokenStore
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		exams:     repository.NewExamRepository(pool),
		questions: repository.NewQuestionRepository(pool),
		instances: repository.NewExamInstanceRepository(pool),
		answers:   repository.NewAnswerRepository(pool),
		tokens:    repository.NewUserTokenRepository(pool),
	}
}

func memoryStores() stores {
	m := repository.NewMemoryRepositories()
	return stores{
		exams:     m.Exams,
		questions: m.Questions,
		instances: m.Instances,
		answers:   m.Answers,
		tokens:    m.Tokens,
	}
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("spreadsheets", cfg.SpreadsheetDriver).
		Msg("Starting GScribe Backend")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	policy, err := service.ParseMissingAnswerPolicy(cfg.MissingAnswerPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handler.HealthCheck{}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	var st stores
	if cfg.StoreDriver == config.StoreDriverPostgres {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()

		st = postgresStores(pool)
		checks["postgres"] = pool.Ping
	} else {
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		st = memoryStores()
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		checks["redis"] = database.RedisCheck(rdb)
	} else {
		log.Warn().Msg("REDIS_URL not set; paper cache and rate limiting disabled")
	}

	// ─── Identity ──────────────────────────────────────────────────────
	httpClient := &http.Client{Timeout: identityClient}
	certsURL := cfg.GoogleCertsURL
	if certsURL == "" {
		certsURL = identity.GoogleCertsURL
	}
	keys, err := identity.NewKeySet(ctx, certsURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load identity keys")
	}
	setterVerifier := identity.NewVerifier(keys, cfg.GoogleClientID)
	examineeVerifier := identity.NewVerifier(keys, cfg.ExamineeClientID)

	provider := identity.NewGoogleProvider(identity.GoogleProviderConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		TokenURL:     cfg.GoogleTokenURL,
		HTTPClient:   httpClient,
	})

	// ─── Spreadsheet Client ────────────────────────────────────────────
	var client sheets.Client
	if cfg.SpreadsheetDriver == config.SpreadsheetDriverXLSX {
		if err := os.MkdirAll(cfg.XLSXDir, 0o755); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.XLSXDir).Msg("Failed to create workbook directory")
		}
		client = sheets.NewWorkbookClient(cfg.XLSXDir)
	} else {
		client = sheets.NewGoogleClient()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	tokenService := service.NewTokenService(provider, setterVerifier, log)
	access := service.NewSpreadsheetAccess(tokenService, st.tokens, cfg.SheetsCallTimeout, log)
	writer := service.NewResponseSheetWriter(client, access, log)
	reader := service.NewExamSourceReader(client, access)

	authService := service.NewAuthService(provider, setterVerifier, st.tokens, log)
	examService := service.NewExamService(st.exams, st.questions, st.tokens, reader, writer, rdb, cfg.PaperCacheTTL, log)
	instanceService := service.NewExamInstanceService(st.instances, st.answers, st.tokens, examService, writer, policy, log)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	if rdb != nil {
		responseWorker := worker.NewResponseWorker(rdb, instanceService, log)
		instanceService.SetRetryQueue(responseWorker)
		go func() {
			defer close(workerDone)
			responseWorker.Start(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Exam:         handler.NewExamHandler(examService, log),
		ExamInstance: handler.NewExamInstanceHandler(instanceService, log),
		Health:       handler.NewHealthHandler(checks, log),
	}

	var authLimiter *middleware.RateLimiter
	if rdb != nil && cfg.AuthRateLimit > 0 {
		authLimiter = middleware.NewRateLimiter(rdb, "authenticate", cfg.AuthRateLimit, time.Minute, log)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, router.Identity{
		Setter:   setterVerifier,
		Examinee: examineeVerifier,
	}, authLimiter, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests; in-flight submissions get 15s.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the retry worker; unprocessed jobs stay queued in Redis.
	workerCancel()
	<-workerDone

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
