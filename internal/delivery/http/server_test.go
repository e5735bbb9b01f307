package http_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/config"
	httpdelivery "github.com/boundary-microservice/internal/delivery/http"
	"github.com/boundary-microservice/internal/delivery/http/handler"
)

func newTestServer(checks ...httpdelivery.HealthCheck) *httpdelivery.Server {
	logger := zap.NewNop()
	return httpdelivery.NewServer(
		&config.Config{},
		logger,
		handler.NewBoundaryHandler(nil, logger),
		handler.NewCacheHandler(nil, logger),
		checks...,
	)
}

func TestServer_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(httpdelivery.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return nil }})

		resp, err := srv.App().Test(httptest.NewRequest("GET", "/api/v1/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 200, resp.StatusCode)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "ok", body["checks"].(map[string]interface{})["redis"])
	})

	t.Run("degraded", func(t *testing.T) {
		srv := newTestServer(httpdelivery.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error {
			return stderrors.New("connection refused")
		}})

		resp, err := srv.App().Test(httptest.NewRequest("GET", "/api/v1/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, 503, resp.StatusCode)
	})
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer()

	resp, err := srv.App().Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer()

	resp, err := srv.App().Test(httptest.NewRequest("GET", "/api/v1/nope", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ROUTE_NOT_FOUND", body["error"].(map[string]interface{})["code"])
}
