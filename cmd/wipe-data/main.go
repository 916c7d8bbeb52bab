package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/astraid/intervox-backend/internal/config"
	"github.com/astraid/intervox-backend/internal/database"
	"github.com/astraid/intervox-backend/internal/logger"
	"github.com/astraid/intervox-backend/internal/repository"
	"github.com/astraid/intervox-backend/internal/service"
	"github.com/astraid/intervox-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

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

	// ─── Initialize Service ────────────────────────────────────────────
	interviewRepo := repository.NewInterviewRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)
	queue := worker.NewRedisQueue(rdb)
	adminService := service.NewAdminService(interviewRepo, candidateRepo, queue, log)

	// ─── CLI Confirmation ──────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Wipe All Interview Data ===")
	fmt.Println("This deletes ALL interviews, candidates and queued evaluations.")
	fmt.Print("Type 'yes' to continue: ")

	answer, _ := reader.ReadString('\n')
	if strings.TrimSpace(answer) != "yes" {
		fmt.Println("Aborted")
		return
	}

	if err := adminService.WipeAll(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to wipe data")
	}

	fmt.Println("\nSuccess! All interview data wiped.")
}
