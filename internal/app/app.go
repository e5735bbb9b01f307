package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/config"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/infrastructure/azuremaps"
	"github.com/boundary-microservice/internal/infrastructure/geoapify"
	"github.com/boundary-microservice/internal/infrastructure/transport"
	"github.com/boundary-microservice/internal/observability"
	"github.com/boundary-microservice/internal/repository/cache"
	"github.com/boundary-microservice/internal/repository/postgres"
	"github.com/boundary-microservice/internal/usecase"
)

// Options - что нужно процессу помимо общего стека
type Options struct {
	// RequireRedis - подключиться к Redis даже при другом backend кеша (стримы воркера)
	RequireRedis bool
}

// App - собранные зависимости сервиса
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Geocoder   repository.GeocodeRepository
	Cache      repository.BoundaryCache
	BoundaryUC *usecase.BoundaryUseCase

	// Redis и DB - nil, если не нужны конфигурации
	Redis *cache.Redis
	DB    *postgres.DB

	shutdownTracing func(context.Context) error
	closers         []func() error
}

// New собирает стек из конфигурации: трассировка, провайдер, хранилище кеша, use case
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	shutdown, err := observability.InitTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		return nil, err
	}
	a.shutdownTracing = shutdown

	if cfg.Cache.Backend == "redis" || opts.RequireRedis {
		redisClient, err := cache.NewRedis(&cfg.Redis, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = redisClient
		a.closers = append(a.closers, redisClient.Close)
	}

	if cfg.Cache.Backend == "postgres" {
		db, err := postgres.New(cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.DB = db
		a.closers = append(a.closers, db.Close)
	}

	store, err := a.recordStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Geocoder, err = NewGeocoder(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Cache = cache.NewBoundaryCache(store, cache.Options{
		Precision: cfg.Cache.Precision,
		TTL:       cfg.Cache.TTL,
	}, logger)

	resolver := usecase.NewBoundaryResolver(a.Geocoder, logger)
	a.BoundaryUC = usecase.NewBoundaryUseCase(resolver, a.Cache, logger, cfg.Resolver.Concurrency)

	logger.Info("Boundary stack initialized",
		zap.String("provider", a.Geocoder.Name()),
		zap.String("cache_backend", store.Name()),
		zap.Int("precision", cfg.Cache.Precision),
		zap.Duration("ttl", cfg.Cache.TTL))

	return a, nil
}

// NewGeocoder создаёт клиент выбранного провайдера поверх общего транспорта
func NewGeocoder(cfg *config.Config, logger *zap.Logger) (repository.GeocodeRepository, error) {
	if cfg.APIKey() == "" {
		logger.Warn("Geocoder API key is not configured, provider requests will be rejected",
			zap.String("provider", cfg.Geocoder.Provider))
	}

	tr := transport.New(transport.Options{
		Provider:       cfg.Geocoder.Provider,
		ConnectTimeout: cfg.Geocoder.ConnectTimeout,
		RequestTimeout: cfg.Geocoder.RequestTimeout,
		RateLimit:      cfg.Geocoder.RateLimit,
		RateBurst:      cfg.Geocoder.RateBurst,
		UserAgent:      cfg.Geocoder.UserAgent,
	}, logger)

	switch cfg.Geocoder.Provider {
	case azuremaps.ProviderName:
		return azuremaps.NewClient(cfg.Geocoder.AzureBaseURL, cfg.Geocoder.AzureKey, tr, logger), nil
	case geoapify.ProviderName:
		return geoapify.NewClient(cfg.Geocoder.GeoapifyURL, cfg.Geocoder.GeoapifyKey, tr, logger), nil
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Geocoder.Provider)
	}
}

func (a *App) recordStore(ctx context.Context) (repository.RecordStore, error) {
	switch a.Config.Cache.Backend {
	case "file":
		return cache.NewFileStore(a.Config.Cache.Dir, a.Logger)
	case "redis":
		return cache.NewRedisStore(a.Redis), nil
	case "postgres":
		if err := postgres.EnsureSchema(ctx, a.DB); err != nil {
			return nil, err
		}
		return postgres.NewCacheStore(a.DB), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.Config.Cache.Backend)
	}
}

// Close закрывает подключения в обратном порядке и завершает трассировку
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Error("Failed to close dependency", zap.Error(err))
		}
	}
	a.closers = nil

	if a.shutdownTracing != nil {
		observability.ShutdownWithTimeout(a.shutdownTracing, a.Logger)
		a.shutdownTracing = nil
	}
}
