package main

// @title Boundary Microservice API
// @version 1.0.0
// @description Микросервис определения административных границ. По координате (или почтовому индексу)
// @description находит контур самого точного уровня: город -> регион -> округ -> страна,
// @description загружает полигон у провайдера геокодирования и кеширует результат.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/boundary-microservice/docs"
	"github.com/boundary-microservice/internal/app"
	"github.com/boundary-microservice/internal/config"
	httpDelivery "github.com/boundary-microservice/internal/delivery/http"
	"github.com/boundary-microservice/internal/delivery/http/handler"
	"github.com/boundary-microservice/internal/pkg/logger"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "boundary-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Boundary Microservice")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("provider", cfg.Geocoder.Provider),
		zap.String("cache_backend", cfg.Cache.Backend),
	)

	// 3. Build boundary stack (tracing, provider, cache store, use case)
	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	application, err := app.New(initCtx, cfg, log, app.Options{})
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	// 4. Health checks
	var checks []httpDelivery.HealthCheck
	if application.Redis != nil {
		checks = append(checks, httpDelivery.HealthCheck{Name: "redis", Check: application.Redis.Health})
	}
	if application.DB != nil {
		checks = append(checks, httpDelivery.HealthCheck{Name: "postgres", Check: application.DB.Health})
	}

	// 5. Initialize HTTP Handlers
	boundaryHandler := handler.NewBoundaryHandler(application.BoundaryUC, log)
	cacheHandler := handler.NewCacheHandler(application.BoundaryUC, log)

	// 6. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, boundaryHandler, cacheHandler, checks...)

	// 7. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 8. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
