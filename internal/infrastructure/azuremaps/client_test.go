package azuremaps

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/domain/repository"
	"github.com/boundary-microservice/internal/infrastructure/transport"
	"github.com/boundary-microservice/internal/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) repository.GeocodeRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tr := transport.New(transport.Options{
		Provider:       ProviderName,
		ConnectTimeout: time.Second,
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())
	return NewClient(server.URL, "test-key", tr, zap.NewNop())
}

func TestClient_ReverseGeocode(t *testing.T) {
	t.Run("successful request", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search/address/reverse/json", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("subscription-key"))
			assert.Equal(t, "1.0", r.URL.Query().Get("api-version"))
			assert.Equal(t, "52.52,13.405", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`{"addresses":[{"address":{
				"municipality":"Berlin","countrySubdivision":"BE","countrySubdivisionName":"Berlin",
				"country":"Germany","countryCode":"DE","postalCode":"10178"}}]}`))
		})

		addr, err := client.ReverseGeocode(context.Background(), domain.Coordinate{Latitude: 52.52, Longitude: 13.405})
		require.NoError(t, err)
		assert.Equal(t, "Berlin", addr.Municipality)
		assert.Equal(t, "Berlin", addr.CountrySubdivision)
		assert.Equal(t, "Germany", addr.Country)
		assert.Equal(t, "10178", addr.PostalCode)
	})

	t.Run("subdivision code used when name missing", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"addresses":[{"address":{"countrySubdivision":"IL"}}]}`))
		})

		addr, err := client.ReverseGeocode(context.Background(), domain.Coordinate{Latitude: 39.78, Longitude: -89.65})
		require.NoError(t, err)
		assert.Equal(t, "IL", addr.CountrySubdivision)
	})

	t.Run("no addresses", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"addresses":[]}`))
		})

		_, err := client.ReverseGeocode(context.Background(), domain.Coordinate{Latitude: 0, Longitude: -160})
		assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	})
}

func TestClient_SearchEntity(t *testing.T) {
	t.Run("returns geometry id", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search/address/json", r.URL.Path)
			assert.Equal(t, "Springfield", r.URL.Query().Get("query"))
			assert.Equal(t, "Municipality", r.URL.Query().Get("entityType"))
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"results":[{"dataSources":{"geometry":{"id":"geo-123"}}}]}`))
		})

		id, err := client.SearchEntity(context.Background(), "Springfield", domain.LevelMunicipality)
		require.NoError(t, err)
		assert.Equal(t, "geo-123", id)
	})

	t.Run("result without geometry", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results":[{"dataSources":{}}]}`))
		})

		_, err := client.SearchEntity(context.Background(), "Nowhere", domain.LevelCountry)
		assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	})
}

func TestClient_FetchGeometry(t *testing.T) {
	t.Run("falls through api versions", func(t *testing.T) {
		var calls int32
		var versions []string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			version := r.URL.Query().Get("api-version")
			versions = append(versions, version)
			assert.Equal(t, "geo-123", r.URL.Query().Get("geometries"))
			if version != "1.0" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte(`{"additionalData":[{"providerID":"geo-123","geometryData":
				{"type":"FeatureCollection","features":[{"type":"Feature","geometry":
				{"type":"Polygon","coordinates":[[[-89.7,39.7],[-89.6,39.7],[-89.6,39.8],[-89.7,39.7]]]}}]}}]}`))
		})

		geometry, err := client.FetchGeometry(context.Background(), "geo-123")
		require.NoError(t, err)
		assert.Equal(t, domain.GeometryPolygon, geometry.Type)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
		assert.Equal(t, []string{"2023-06-01", "1.0"}, versions)
	})

	t.Run("all versions missing", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"additionalData":[]}`))
		})

		_, err := client.FetchGeometry(context.Background(), "geo-404")
		assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	})

	t.Run("unauthorized stops the fallback", func(t *testing.T) {
		var calls int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.FetchGeometry(context.Background(), "geo-123")
		assert.True(t, stderrors.Is(err, errors.ErrUnauthorized))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}
