package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/primeivy/portal-backend/internal/config"
	"github.com/primeivy/portal-backend/internal/database"
	"github.com/primeivy/portal-backend/internal/engine"
	"github.com/primeivy/portal-backend/internal/handler"
	"github.com/primeivy/portal-backend/internal/logger"
	"github.com/primeivy/portal-backend/internal/repository"
	"github.com/primeivy/portal-backend/internal/router"
	"github.com/primeivy/portal-backend/internal/service"
	"github.com/primeivy/portal-backend/internal/source"
	"github.com/primeivy/portal-backend/internal/validator"
	"github.com/primeivy/portal-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("workbook", cfg.WorkbookPath).
		Msg("Starting PrimeIvy Portal Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Open Exam Workbook ────────────────────────────────────────────
	workbook := source.NewWorkbook(cfg.WorkbookPath, log)

	// ─── Initialize Repositories ───────────────────────────────────────
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, workbook, log)
	examService := service.NewExamService(cfg, workbook, log)
	sessionService := service.NewSessionService(examService, resultRepo, rdb, engine.SystemClock(), log)

	// Fail fast on an unreadable or empty workbook before accepting traffic.
	if set, err := examService.QuestionSet(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load exam workbook")
	} else {
		log.Info().
			Int("questions", set.Total()).
			Bool("answer_key", set.HasAnswerKey()).
			Msg("Exam workbook ready")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth: handler.NewAuthHandler(authService),
		Exam: handler.NewExamHandler(examService, sessionService),
		WS:   handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	deadlineWorker := worker.NewDeadlineWorker(sessionService, log)
	resultsWorker := worker.NewResultsWorker(resultRepo, rdb, log)

	go deadlineWorker.Start(workerCtx)
	go resultsWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
