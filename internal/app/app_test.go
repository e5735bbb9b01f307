package app_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/app"
	"github.com/boundary-microservice/internal/config"
	"github.com/boundary-microservice/internal/domain"
)

// fakeAzure отвечает Berlin на любую точку и считает запросы
func fakeAzure(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	points := make([]string, 50)
	for i := range points {
		points[i] = fmt.Sprintf("[%g,%g]", 13.0+float64(i)*0.01, 52.3+float64(i%2)*0.1)
	}
	polygon := `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[` + strings.Join(points, ",") + `]]}}]}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("subscription-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search/address/reverse/json":
			fmt.Fprint(w, `{"addresses":[{"address":{"municipality":"Berlin","countrySubdivisionName":"Berlin","country":"Germany","countryCode":"DE"}}]}`)
		case "/search/address/json":
			fmt.Fprint(w, `{"results":[{"dataSources":{"geometry":{"id":"geo-berlin"}}}]}`)
		case "/search/polygon":
			fmt.Fprint(w, `{"additionalData":[{"providerID":"geo-berlin","geometryData":`+polygon+`}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loadConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	return cfg
}

func TestApp_FileBackendEndToEnd(t *testing.T) {
	var requests atomic.Int32
	srv := fakeAzure(t, &requests)
	cfg := loadConfig(t, map[string]string{
		"GEOCODER_PROVIDER":   "azure",
		"AZURE_MAPS_KEY":      "test-key",
		"AZURE_MAPS_BASE_URL": srv.URL,
		"CACHE_BACKEND":       "file",
		"CACHE_DIR":           t.TempDir(),
	})

	ctx := context.Background()
	a, err := app.New(ctx, cfg, zap.NewNop(), app.Options{})
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Redis)
	assert.Nil(t, a.DB)
	assert.Equal(t, "azure", a.Geocoder.Name())

	berlin := domain.Coordinate{Latitude: 52.52, Longitude: 13.405}
	boundary, err := a.BoundaryUC.GetBoundary(ctx, berlin, "")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", boundary.Name)
	assert.Equal(t, domain.LevelMunicipality, boundary.Level)
	assert.Len(t, boundary.Ring, 50)
	assert.Equal(t, int32(3), requests.Load())

	stats, err := a.BoundaryUC.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "file", stats.Backend)
	assert.Equal(t, 1, stats.Entries)

	// повторный запрос без обращений к провайдеру
	_, err = a.BoundaryUC.GetBoundary(ctx, berlin, "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), requests.Load())
}

func TestApp_SurvivesRestart(t *testing.T) {
	var requests atomic.Int32
	srv := fakeAzure(t, &requests)
	cfg := loadConfig(t, map[string]string{
		"AZURE_MAPS_KEY":      "test-key",
		"AZURE_MAPS_BASE_URL": srv.URL,
		"CACHE_DIR":           t.TempDir(),
	})
	ctx := context.Background()
	berlin := domain.Coordinate{Latitude: 52.52, Longitude: 13.405}

	first, err := app.New(ctx, cfg, zap.NewNop(), app.Options{})
	require.NoError(t, err)
	_, err = first.BoundaryUC.GetBoundary(ctx, berlin, "")
	require.NoError(t, err)
	first.Close()

	second, err := app.New(ctx, cfg, zap.NewNop(), app.Options{})
	require.NoError(t, err)
	defer second.Close()
	boundary, err := second.BoundaryUC.GetBoundary(ctx, berlin, "")
	require.NoError(t, err)
	assert.Len(t, boundary.Ring, 50)
	assert.Equal(t, int32(3), requests.Load())
}

func TestNewGeocoder(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"GEOCODER_PROVIDER": "geoapify"})
	geocoder, err := app.NewGeocoder(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "geoapify", geocoder.Name())

	cfg.Geocoder.Provider = "bing"
	_, err = app.NewGeocoder(cfg, zap.NewNop())
	assert.Error(t, err)
}
