package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boundary-microservice/internal/domain"
)

func TestNewBoundaryResponse(t *testing.T) {
	b := &domain.ResolvedBoundary{
		Level:      domain.LevelMunicipality,
		Name:       "Berlin",
		EntityType: "Municipality",
		Ring: []domain.Coordinate{
			{Latitude: 52.4, Longitude: 13.1},
			{Latitude: 52.6, Longitude: 13.2},
			{Latitude: 52.5, Longitude: 13.7},
		},
	}

	resp := NewBoundaryResponse(b)
	require.NotNil(t, resp)
	assert.Equal(t, "municipality", resp.Level)
	assert.Len(t, resp.Ring, 3)
	assert.Equal(t, "Polygon", resp.Polygon.Type)
	require.Len(t, resp.Polygon.Coordinates, 1)
	assert.Len(t, resp.Polygon.Coordinates[0], 4)
	assert.Equal(t, [2]float64{13.1, 52.4}, resp.Polygon.Coordinates[0][0])
	assert.Equal(t, [4]float64{13.1, 52.4, 13.7, 52.6}, resp.BBox)

	assert.Nil(t, NewBoundaryResponse(nil))
}

func TestNewCacheStatsResponse(t *testing.T) {
	resp := NewCacheStatsResponse(&domain.CacheStats{Backend: "file", Entries: 2, Hits: 3, Misses: 1})
	assert.Equal(t, 0.75, resp.HitRatio)

	resp = NewCacheStatsResponse(&domain.CacheStats{Backend: "file"})
	assert.Zero(t, resp.HitRatio)
}
