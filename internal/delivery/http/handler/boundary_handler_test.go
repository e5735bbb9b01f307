package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/delivery/http/handler"
	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/pkg/errors"
	"github.com/boundary-microservice/internal/usecase"
)

// MockBoundaryService is a mock of BoundaryService
type MockBoundaryService struct {
	mock.Mock
}

func (m *MockBoundaryService) GetBoundaryForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel, description string) (*domain.ResolvedBoundary, error) {
	args := m.Called(ctx, coord, levels, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolvedBoundary), args.Error(1)
}

func (m *MockBoundaryService) GetBoundaryForPostalCode(ctx context.Context, code, description string) (*domain.ResolvedBoundary, error) {
	args := m.Called(ctx, code, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResolvedBoundary), args.Error(1)
}

func (m *MockBoundaryService) GetBoundaries(ctx context.Context, requests []usecase.BoundaryRequest) []usecase.BoundaryResult {
	args := m.Called(ctx, requests)
	return args.Get(0).([]usecase.BoundaryResult)
}

func (m *MockBoundaryService) ClearCache(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockBoundaryService) CacheStats(ctx context.Context) (*domain.CacheStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CacheStats), args.Error(1)
}

func berlinBoundary() *domain.ResolvedBoundary {
	return &domain.ResolvedBoundary{
		Level:      domain.LevelMunicipality,
		Name:       "Berlin",
		EntityType: "Municipality",
		GeometryID: "geo-berlin",
		Ring: []domain.Coordinate{
			{Latitude: 52.4, Longitude: 13.1},
			{Latitude: 52.6, Longitude: 13.2},
			{Latitude: 52.5, Longitude: 13.7},
		},
	}
}

func setupApp(svc handler.BoundaryService) *fiber.App {
	app := fiber.New()
	boundaryHandler := handler.NewBoundaryHandler(svc, zap.NewNop())
	cacheHandler := handler.NewCacheHandler(svc, zap.NewNop())

	api := app.Group("/api/v1")
	api.Get("/boundaries", boundaryHandler.GetBoundary)
	api.Post("/boundaries/batch", boundaryHandler.GetBoundariesBatch)
	api.Get("/boundaries/postal/:code", boundaryHandler.GetPostalCodeBoundary)
	api.Get("/cache/stats", cacheHandler.GetStats)
	api.Delete("/cache", cacheHandler.Clear)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestBoundaryHandler_GetBoundary(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &MockBoundaryService{}
		coord := domain.Coordinate{Latitude: 52.52, Longitude: 13.405}
		svc.On("GetBoundaryForLevels", mock.Anything, coord, []domain.AdministrativeLevel(nil), "Flat").Return(berlinBoundary(), nil)

		status, body := doRequest(t, setupApp(svc), "GET", "/api/v1/boundaries?lat=52.52&lon=13.405&description=Flat", "")

		assert.Equal(t, 200, status)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "Berlin", data["name"])
		assert.Equal(t, "municipality", data["level"])
		assert.Len(t, data["ring"], 3)
		polygon := data["polygon"].(map[string]interface{})
		assert.Equal(t, "Polygon", polygon["type"])
		svc.AssertExpectations(t)
	})

	t.Run("explicit levels", func(t *testing.T) {
		svc := &MockBoundaryService{}
		levels := []domain.AdministrativeLevel{domain.LevelCountry}
		svc.On("GetBoundaryForLevels", mock.Anything, mock.Anything, levels, "").Return(berlinBoundary(), nil)

		status, _ := doRequest(t, setupApp(svc), "GET", "/api/v1/boundaries?lat=52.52&lon=13.405&levels=country", "")
		assert.Equal(t, 200, status)
		svc.AssertExpectations(t)
	})

	t.Run("invalid input", func(t *testing.T) {
		cases := map[string]string{
			"missing lon":   "/api/v1/boundaries?lat=52.52",
			"lat not float": "/api/v1/boundaries?lat=abc&lon=13",
			"lat range":     "/api/v1/boundaries?lat=95&lon=13",
			"unknown level": "/api/v1/boundaries?lat=52&lon=13&levels=galaxy",
		}
		for name, target := range cases {
			t.Run(name, func(t *testing.T) {
				svc := &MockBoundaryService{}
				status, body := doRequest(t, setupApp(svc), "GET", target, "")
				assert.Equal(t, 400, status)
				assert.NotNil(t, body["error"])
				svc.AssertNotCalled(t, "GetBoundaryForLevels", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("error mapping", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{errors.ErrNoBoundaryFound, 404, "NO_BOUNDARY_FOUND"},
			{errors.ErrTimeout, 504, "PROVIDER_TIMEOUT"},
			{errors.ErrProviderUnavailable, 502, "PROVIDER_UNAVAILABLE"},
			{context.DeadlineExceeded, 504, "PROVIDER_TIMEOUT"},
		}
		for _, tc := range cases {
			svc := &MockBoundaryService{}
			svc.On("GetBoundaryForLevels", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			status, body := doRequest(t, setupApp(svc), "GET", "/api/v1/boundaries?lat=0&lon=0", "")
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body["error"].(map[string]interface{})["code"])
		}
	})
}

func TestBoundaryHandler_GetBoundariesBatch(t *testing.T) {
	svc := &MockBoundaryService{}
	svc.On("GetBoundaries", mock.Anything, mock.MatchedBy(func(reqs []usecase.BoundaryRequest) bool {
		return len(reqs) == 2 && reqs[1].Levels[0] == domain.LevelCountry && reqs[0].Description == "a"
	})).Return([]usecase.BoundaryResult{
		{Boundary: berlinBoundary(), FromCache: true},
		{Err: errors.ErrNoBoundaryFound},
	})

	body := `{"items":[{"lat":52.52,"lon":13.405,"description":"a"},{"lat":0,"lon":0,"levels":["country"]}]}`
	status, resp := doRequest(t, setupApp(svc), "POST", "/api/v1/boundaries/batch", body)

	assert.Equal(t, 200, status)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(1), data["failed"])

	results := data["results"].([]interface{})
	first := results[0].(map[string]interface{})
	assert.Equal(t, true, first["from_cache"])
	assert.Equal(t, "Berlin", first["boundary"].(map[string]interface{})["name"])
	second := results[1].(map[string]interface{})
	assert.Equal(t, "NO_BOUNDARY_FOUND", second["error"].(map[string]interface{})["code"])
	svc.AssertExpectations(t)
}

func TestBoundaryHandler_GetBoundariesBatch_Invalid(t *testing.T) {
	svc := &MockBoundaryService{}
	app := setupApp(svc)

	status, _ := doRequest(t, app, "POST", "/api/v1/boundaries/batch", `{"items":[]}`)
	assert.Equal(t, 400, status)

	status, _ = doRequest(t, app, "POST", "/api/v1/boundaries/batch", `{"items":[{"lat":52}]}`)
	assert.Equal(t, 400, status)

	status, _ = doRequest(t, app, "POST", "/api/v1/boundaries/batch", `not json`)
	assert.Equal(t, 400, status)

	items := make([]string, 101)
	for i := range items {
		items[i] = `{"lat":1,"lon":1}`
	}
	status, _ = doRequest(t, app, "POST", "/api/v1/boundaries/batch", `{"items":[`+strings.Join(items, ",")+`]}`)
	assert.Equal(t, 400, status)

	svc.AssertNotCalled(t, "GetBoundaries", mock.Anything, mock.Anything)
}

func TestBoundaryHandler_GetPostalCodeBoundary(t *testing.T) {
	svc := &MockBoundaryService{}
	postal := berlinBoundary()
	postal.Level = domain.LevelPostalCode
	postal.Name = "10178"
	svc.On("GetBoundaryForPostalCode", mock.Anything, "10178", "").Return(postal, nil)
	app := setupApp(svc)

	status, body := doRequest(t, app, "GET", "/api/v1/boundaries/postal/10178", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "postal_code", body["data"].(map[string]interface{})["level"])

	status, _ = doRequest(t, app, "GET", "/api/v1/boundaries/postal/1234567890123", "")
	assert.Equal(t, 400, status)
}

func TestCacheHandler(t *testing.T) {
	svc := &MockBoundaryService{}
	svc.On("CacheStats", mock.Anything).Return(&domain.CacheStats{Backend: "file", Entries: 3, Hits: 1, Misses: 1}, nil)
	svc.On("ClearCache", mock.Anything).Return(3, nil)
	app := setupApp(svc)

	status, body := doRequest(t, app, "GET", "/api/v1/cache/stats", "")
	assert.Equal(t, 200, status)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "file", data["backend"])
	assert.Equal(t, float64(3), data["entries"])
	assert.Equal(t, 0.5, data["hit_ratio"])

	status, body = doRequest(t, app, "DELETE", "/api/v1/cache", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(3), body["data"].(map[string]interface{})["removed"])
}
