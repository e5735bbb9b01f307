package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/boundary-microservice/internal/domain"
)

// MockGeocodeRepository is a mock of GeocodeRepository
type MockGeocodeRepository struct {
	mock.Mock
}

func (m *MockGeocodeRepository) Name() string {
	return "mock"
}

func (m *MockGeocodeRepository) ReverseGeocode(ctx context.Context, coord domain.Coordinate) (*domain.AddressRecord, error) {
	args := m.Called(ctx, coord)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AddressRecord), args.Error(1)
}

func (m *MockGeocodeRepository) SearchEntity(ctx context.Context, query string, level domain.AdministrativeLevel) (string, error) {
	args := m.Called(ctx, query, level)
	return args.String(0), args.Error(1)
}

func (m *MockGeocodeRepository) FetchGeometry(ctx context.Context, geometryID string) (*domain.RawGeometry, error) {
	args := m.Called(ctx, geometryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawGeometry), args.Error(1)
}

// polygon возвращает Polygon из n различных точек вокруг (lat, lng)
func polygon(n int, lat, lng float64) *domain.RawGeometry {
	points := make([]string, n)
	for i := 0; i < n; i++ {
		points[i] = fmt.Sprintf("[%g,%g]", lng+float64(i)*0.001, lat+float64(i%2)*0.001)
	}
	return &domain.RawGeometry{
		Type:        domain.GeometryPolygon,
		Coordinates: json.RawMessage("[[" + strings.Join(points, ",") + "]]"),
	}
}

// MockBoundaryCache is a mock of BoundaryCache
type MockBoundaryCache struct {
	mock.Mock
}

func (m *MockBoundaryCache) Get(ctx context.Context, coord domain.Coordinate) (*domain.ResolvedBoundary, bool) {
	args := m.Called(ctx, coord)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.ResolvedBoundary), args.Bool(1)
}

func (m *MockBoundaryCache) GetForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel) (*domain.ResolvedBoundary, bool) {
	args := m.Called(ctx, coord, levels)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.ResolvedBoundary), args.Bool(1)
}

func (m *MockBoundaryCache) Put(ctx context.Context, coord domain.Coordinate, boundary *domain.ResolvedBoundary) error {
	args := m.Called(ctx, coord, boundary)
	return args.Error(0)
}

func (m *MockBoundaryCache) PutForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel, boundary *domain.ResolvedBoundary) error {
	args := m.Called(ctx, coord, levels, boundary)
	return args.Error(0)
}

func (m *MockBoundaryCache) GetPostalCode(ctx context.Context, code string) (*domain.ResolvedBoundary, bool) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.ResolvedBoundary), args.Bool(1)
}

func (m *MockBoundaryCache) PutPostalCode(ctx context.Context, code string, boundary *domain.ResolvedBoundary) error {
	args := m.Called(ctx, code, boundary)
	return args.Error(0)
}

func (m *MockBoundaryCache) Clear(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockBoundaryCache) Stats(ctx context.Context) (*domain.CacheStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheStats), args.Error(1)
}
