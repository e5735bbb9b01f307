package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/app"
	"github.com/boundary-microservice/internal/config"
	"github.com/boundary-microservice/internal/pkg/logger"
	redisRepo "github.com/boundary-microservice/internal/repository/redis"
	"github.com/boundary-microservice/internal/worker"
	"github.com/boundary-microservice/internal/worker/boundary"
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
	log, err := logger.New(cfg.Log.Level, "boundary-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Boundary Prefetch Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("concurrency", cfg.Resolver.Concurrency))

	// 3. Build boundary stack; стримам Redis нужен при любом backend кеша
	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	application, err := app.New(initCtx, cfg, log, app.Options{RequireRedis: true})
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// 4. Initialize repositories
	streamRepo := redisRepo.NewStreamRepository(application.Redis.Client(), log)

	// 5. Initialize workers
	prefetchWorker := boundary.NewPrefetchWorker(
		streamRepo,
		application.BoundaryUC,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.BatchSize,
		log,
	)

	// 6. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, worker.DefaultShutdownTimeout)
	workerManager.Register(prefetchWorker)

	// 7. Setup graceful shutdown
	ctx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Stop сначала: текущий batch дорабатывает и подтверждается
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancelWorkers()

	log.Info("Worker shutdown complete")
}
