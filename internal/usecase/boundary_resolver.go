package usecase

import (
	"context"
	stderrors "errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/metrics"
	"github.com/boundary-microservice/internal/observability"
	"github.com/boundary-microservice/internal/pkg/errors"
	"github.com/boundary-microservice/internal/pkg/logger"
)

// BoundaryResolver - цепочка fallback по административным уровням.
// Состояния между вызовами нет
type BoundaryResolver struct {
	geocoder repository.GeocodeRepository
	logger   *zap.Logger
}

// NewBoundaryResolver - создание нового BoundaryResolver
func NewBoundaryResolver(geocoder repository.GeocodeRepository, logger *zap.Logger) *BoundaryResolver {
	return &BoundaryResolver{
		geocoder: geocoder,
		logger:   logger,
	}
}

// Resolve находит границу самого точного уровня из запроса, для которого есть полигон.
// NotFound и InvalidGeometry уровня переводят к следующему; таймаут, отказ провайдера
// и отмена контекста прерывают разрешение целиком
func (r *BoundaryResolver) Resolve(ctx context.Context, query domain.BoundaryQuery) (result *domain.ResolvedBoundary, err error) {
	ctx, span := observability.Tracer().Start(ctx, "boundary.resolve")
	span.SetAttributes(
		attribute.Float64("lat", query.Coordinate.Latitude),
		attribute.Float64("lon", query.Coordinate.Longitude),
	)
	defer func() {
		finishResolveSpan(span, result, err)
	}()

	address, err := r.geocoder.ReverseGeocode(ctx, query.Coordinate)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			r.logger.Debug("Reverse geocode found no address",
				logger.Coordinate(query.Coordinate.Latitude, query.Coordinate.Longitude))
			metrics.ResolutionsTotal.WithLabelValues("none", "no_boundary").Inc()
			return nil, errors.ErrNoBoundaryFound
		}
		metrics.ResolutionsTotal.WithLabelValues("none", outcomeLabel(err)).Inc()
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}

	for _, level := range query.NormalizedLevels() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		name := address.NameFor(level)
		if name == "" {
			continue
		}

		boundary, err := r.resolveEntity(ctx, name, level)
		if err == nil {
			boundary.SourceAddress = *address
			metrics.ResolutionsTotal.WithLabelValues(level.String(), "resolved").Inc()
			return boundary, nil
		}
		if isLevelMiss(err) {
			r.logger.Debug("Level unavailable, falling back",
				zap.String("level", level.String()),
				zap.String("name", name),
				zap.Error(err))
			continue
		}

		metrics.ResolutionsTotal.WithLabelValues(level.String(), outcomeLabel(err)).Inc()
		return nil, fmt.Errorf("resolve %s %q: %w", level, name, err)
	}

	metrics.ResolutionsTotal.WithLabelValues("none", "no_boundary").Inc()
	return nil, errors.ErrNoBoundaryFound
}

// ResolvePostalCode находит границу почтового индекса без обратного геокодирования
func (r *BoundaryResolver) ResolvePostalCode(ctx context.Context, code string) (result *domain.ResolvedBoundary, err error) {
	normalized, err := domain.NormalizePostalCode(code)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.Tracer().Start(ctx, "boundary.resolve_postal_code")
	span.SetAttributes(attribute.String("postal_code", normalized))
	defer func() {
		finishResolveSpan(span, result, err)
	}()

	level := domain.LevelPostalCode
	boundary, err := r.resolveEntity(ctx, normalized, level)
	if err != nil {
		if isLevelMiss(err) {
			r.logger.Debug("No postal code boundary",
				zap.String("postal_code", normalized),
				zap.Error(err))
			metrics.ResolutionsTotal.WithLabelValues(level.String(), "no_boundary").Inc()
			return nil, errors.ErrNoBoundaryFound
		}
		metrics.ResolutionsTotal.WithLabelValues(level.String(), outcomeLabel(err)).Inc()
		return nil, fmt.Errorf("resolve postal code %q: %w", normalized, err)
	}

	boundary.SourceAddress = domain.AddressRecord{PostalCode: normalized}
	metrics.ResolutionsTotal.WithLabelValues(level.String(), "resolved").Inc()
	return boundary, nil
}

// resolveEntity: поиск сущности, загрузка и нормализация геометрии
func (r *BoundaryResolver) resolveEntity(ctx context.Context, name string, level domain.AdministrativeLevel) (*domain.ResolvedBoundary, error) {
	geometryID, err := r.geocoder.SearchEntity(ctx, name, level)
	if err != nil {
		return nil, err
	}

	geometry, err := r.geocoder.FetchGeometry(ctx, geometryID)
	if err != nil {
		return nil, err
	}

	ring, err := NormalizeGeometry(geometry)
	if err != nil {
		return nil, err
	}

	return &domain.ResolvedBoundary{
		Level:      level,
		Name:       name,
		EntityType: level.EntityType(),
		GeometryID: geometryID,
		Ring:       ring,
		Provider:   r.geocoder.Name(),
	}, nil
}

func finishResolveSpan(span trace.Span, result *domain.ResolvedBoundary, err error) {
	if err != nil {
		if !stderrors.Is(err, errors.ErrNoBoundaryFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	} else if result != nil {
		span.SetAttributes(
			attribute.String("level", result.Level.String()),
			attribute.Int("ring_points", len(result.Ring)),
		)
	}
	span.End()
}

// isLevelMiss - ошибка уровня, после которой цепочка продолжается
func isLevelMiss(err error) bool {
	return stderrors.Is(err, errors.ErrNotFound) || stderrors.Is(err, errors.ErrInvalidGeometry)
}

func outcomeLabel(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrTimeout):
		return "timeout"
	case stderrors.Is(err, errors.ErrUnauthorized):
		return "unauthorized"
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
