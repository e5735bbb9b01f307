package usecase

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/pkg/logger"
)

// defaultConcurrency - число одновременных разрешений в batch, если не задано
const defaultConcurrency = 4

// BoundaryRequest - один элемент batch-запроса
type BoundaryRequest struct {
	Coordinate  domain.Coordinate
	Levels      []domain.AdministrativeLevel
	Description string
}

// BoundaryResult - результат элемента batch. Ровно одно из Boundary / Err не nil
type BoundaryResult struct {
	Boundary  *domain.ResolvedBoundary
	Err       error
	FromCache bool
}

// BoundaryUseCase - use case для получения границ: кеш, затем цепочка fallback
type BoundaryUseCase struct {
	resolver    *BoundaryResolver
	cache       repository.BoundaryCache
	logger      *zap.Logger
	concurrency int
}

// NewBoundaryUseCase создает новый BoundaryUseCase
func NewBoundaryUseCase(
	resolver *BoundaryResolver,
	cache repository.BoundaryCache,
	logger *zap.Logger,
	concurrency int,
) *BoundaryUseCase {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &BoundaryUseCase{
		resolver:    resolver,
		cache:       cache,
		logger:      logger,
		concurrency: concurrency,
	}
}

// GetBoundary возвращает границу для точки по цепочке уровней по умолчанию
func (uc *BoundaryUseCase) GetBoundary(ctx context.Context, coord domain.Coordinate, description string) (*domain.ResolvedBoundary, error) {
	boundary, _, err := uc.getBoundary(ctx, BoundaryRequest{Coordinate: coord, Description: description})
	return boundary, err
}

// GetBoundaryForLevels - то же с явным набором уровней
func (uc *BoundaryUseCase) GetBoundaryForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel, description string) (*domain.ResolvedBoundary, error) {
	boundary, _, err := uc.getBoundary(ctx, BoundaryRequest{Coordinate: coord, Levels: levels, Description: description})
	return boundary, err
}

// GetBoundaryForPostalCode возвращает границу почтового индекса
func (uc *BoundaryUseCase) GetBoundaryForPostalCode(ctx context.Context, code, description string) (*domain.ResolvedBoundary, error) {
	normalized, err := domain.NormalizePostalCode(code)
	if err != nil {
		return nil, err
	}

	if cached, ok := uc.cache.GetPostalCode(ctx, normalized); ok {
		cached.Description = description
		return cached, nil
	}

	boundary, err := uc.resolver.ResolvePostalCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.PutPostalCode(ctx, normalized, boundary); err != nil {
		uc.logger.Warn("Failed to cache postal code boundary",
			zap.String("postal_code", normalized),
			zap.Error(err))
	}

	result := boundary.Clone()
	result.Description = description
	return result, nil
}

// GetBoundaries разрешает batch параллельно, не более concurrency одновременно.
// Ошибка одного элемента не влияет на остальные, порядок результатов совпадает с запросом
func (uc *BoundaryUseCase) GetBoundaries(ctx context.Context, requests []BoundaryRequest) []BoundaryResult {
	results := make([]BoundaryResult, len(requests))

	var g errgroup.Group
	g.SetLimit(uc.concurrency)

	for i := range requests {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(requests); j++ {
				results[j] = BoundaryResult{Err: err}
			}
			break
		}

		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BoundaryResult{Err: err}
				return nil
			}
			boundary, fromCache, err := uc.getBoundary(ctx, requests[i])
			results[i] = BoundaryResult{Boundary: boundary, Err: err, FromCache: fromCache}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ClearCache удаляет все записи кеша
func (uc *BoundaryUseCase) ClearCache(ctx context.Context) (int, error) {
	removed, err := uc.cache.Clear(ctx)
	if err != nil {
		uc.logger.Error("Failed to clear cache", zap.Error(err))
		return removed, err
	}
	uc.logger.Info("Boundary cache cleared", zap.Int("removed", removed))
	return removed, nil
}

// CacheStats возвращает статистику кеша
func (uc *BoundaryUseCase) CacheStats(ctx context.Context) (*domain.CacheStats, error) {
	return uc.cache.Stats(ctx)
}

// getBoundary: кеш -> разрешение -> запись в кеш. Ошибка записи только логируется.
// В кеш попадает граница без описания, описание относится к запросу
func (uc *BoundaryUseCase) getBoundary(ctx context.Context, req BoundaryRequest) (*domain.ResolvedBoundary, bool, error) {
	if !req.Coordinate.Valid() {
		_, err := domain.NewCoordinate(req.Coordinate.Latitude, req.Coordinate.Longitude)
		return nil, false, err
	}

	if cached, ok := uc.cache.GetForLevels(ctx, req.Coordinate, req.Levels); ok {
		cached.Description = req.Description
		return cached, true, nil
	}

	boundary, err := uc.resolver.Resolve(ctx, domain.BoundaryQuery{
		Coordinate: req.Coordinate,
		Levels:     req.Levels,
	})
	if err != nil {
		return nil, false, err
	}

	if err := uc.cache.PutForLevels(ctx, req.Coordinate, req.Levels, boundary); err != nil {
		uc.logger.Warn("Failed to cache boundary",
			logger.Coordinate(req.Coordinate.Latitude, req.Coordinate.Longitude),
			zap.Error(err))
	}

	result := boundary.Clone()
	result.Description = req.Description
	return result, false, nil
}
