package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/astraid/intervox-backend/internal/ai"
	"github.com/astraid/intervox-backend/internal/config"
	"github.com/astraid/intervox-backend/internal/database"
	"github.com/astraid/intervox-backend/internal/handler"
	"github.com/astraid/intervox-backend/internal/logger"
	"github.com/astraid/intervox-backend/internal/pipeline"
	"github.com/astraid/intervox-backend/internal/repository"
	"github.com/astraid/intervox-backend/internal/router"
	"github.com/astraid/intervox-backend/internal/service"
	"github.com/astraid/intervox-backend/internal/validator"
	"github.com/astraid/intervox-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting Intervox Backend")

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

	// ─── Initialize AI Provider ────────────────────────────────────────
	gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	defer gemini.Close()

	// ─── Initialize Pipelines ──────────────────────────────────────────
	questionPipeline := pipeline.NewQuestionPipeline(gemini, cfg.AITimeout, cfg.DefaultTopic, cfg.DefaultQuestionCount, log)
	scoringPipeline := pipeline.NewScoringPipeline(gemini, cfg.AITimeout, log)
	insightsPipeline := pipeline.NewInsightsPipeline(gemini, cfg.AITimeout, log)

	// ─── Initialize Repositories ───────────────────────────────────────
	interviewRepo := repository.NewInterviewRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	queue := worker.NewRedisQueue(rdb)
	notifier := worker.NewRedisNotifier(rdb, log)

	candidateService := service.NewCandidateService(candidateRepo, interviewRepo, log)
	interviewService := service.NewInterviewService(interviewRepo, candidateService, questionPipeline, queue, notifier, log)
	adminService := service.NewAdminService(interviewRepo, candidateRepo, queue, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Interview: handler.NewInterviewHandler(interviewService),
		Peer:      handler.NewPeerHandler(interviewService),
		Candidate: handler.NewCandidateHandler(candidateService, insightsPipeline, log),
		Admin:     handler.NewAdminHandler(adminService),
		WS:        handler.NewWSHandler(rdb, interviewService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	evaluationWorker := worker.NewEvaluationWorker(rdb, scoringPipeline, interviewService, log)
	go evaluationWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

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
