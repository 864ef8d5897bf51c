package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/route-dashboard/internal/config"
	"github.com/route-dashboard/internal/pkg/logger"
	"github.com/route-dashboard/internal/repository/cache"
	"github.com/route-dashboard/internal/repository/postgres"
	redisRepo "github.com/route-dashboard/internal/repository/redis"
	"github.com/route-dashboard/internal/usecase"
	"github.com/route-dashboard/internal/worker"
	"github.com/route-dashboard/internal/worker/changelog"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Change Log Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Duration("read_timeout", cfg.Worker.StreamReadTimeout))

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	routeRepo := postgres.NewRouteRepository(db)
	changeLogRepo := postgres.NewChangeLogRepository(db)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 6. Initialize use cases
	changeLogUC := usecase.NewChangeLogUseCase(changeLogRepo, routeRepo, log)

	// 7. Initialize workers
	changeLogWorker := changelog.NewWorker(
		streamRepo,
		changeLogUC,
		changelog.Config{
			ConsumerGroup: cfg.Worker.ConsumerGroup,
			BatchSize:     cfg.Worker.BatchSize,
			Block:         cfg.Worker.StreamReadTimeout,
			MaxRetries:    cfg.Worker.MaxRetries,
			ClaimIdle:     cfg.Worker.ClaimIdle,
		},
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, worker.DefaultShutdownTimeout)
	workerManager.Register(changeLogWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	stats := changeLogWorker.Stats()
	log.Info("Worker shutdown complete",
		zap.Int64("processed", stats.Processed),
		zap.Int64("skipped", stats.Skipped),
		zap.Int64("failed", stats.Failed))
}
