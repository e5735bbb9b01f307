package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/pkg/errors"
)

// stubService запоминает последний вызов
type stubService struct {
	coord   domain.Coordinate
	levels  []domain.AdministrativeLevel
	code    string
	cleared bool
	err     error
}

func (s *stubService) GetBoundaryForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel, description string) (*domain.ResolvedBoundary, error) {
	s.coord, s.levels = coord, levels
	if s.err != nil {
		return nil, s.err
	}
	return testBoundary(), nil
}

func (s *stubService) GetBoundaryForPostalCode(ctx context.Context, code, description string) (*domain.ResolvedBoundary, error) {
	s.code = code
	b := testBoundary()
	b.Level = domain.LevelPostalCode
	return b, nil
}

func (s *stubService) ClearCache(ctx context.Context) (int, error) {
	s.cleared = true
	return 7, nil
}

func (s *stubService) CacheStats(ctx context.Context) (*domain.CacheStats, error) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.CacheStats{Backend: "file", Entries: 2, TotalSizeBytes: 2048, Oldest: &ts, Newest: &ts}, nil
}

func testBoundary() *domain.ResolvedBoundary {
	return &domain.ResolvedBoundary{
		Level:      domain.LevelMunicipality,
		Name:       "Berlin",
		EntityType: "Municipality",
		GeometryID: "geo-berlin",
		Ring:       []domain.Coordinate{{Latitude: 1, Longitude: 1}, {Latitude: 2, Longitude: 2}, {Latitude: 3, Longitude: 1}},
	}
}

func execute(t *testing.T, svc Service, args ...string) (string, error) {
	t.Helper()
	cleaned := false
	root := NewRootCommand(func(ctx context.Context) (Service, func(), error) {
		return svc, func() { cleaned = true }, nil
	})
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		assert.True(t, cleaned, "cleanup should run after command")
	}
	return buf.String(), err
}

func TestResolveCommand(t *testing.T) {
	svc := &stubService{}
	out, err := execute(t, svc, "resolve", "--lat", "52.52", "--lon", "13.405", "--levels", "country,municipality")

	require.NoError(t, err)
	assert.Contains(t, out, "Name:        Berlin")
	assert.Contains(t, out, "Points:      3")
	assert.Equal(t, 52.52, svc.coord.Latitude)
	assert.Equal(t, []domain.AdministrativeLevel{domain.LevelCountry, domain.LevelMunicipality}, svc.levels)
}

func TestResolveCommand_JSON(t *testing.T) {
	out, err := execute(t, &stubService{}, "resolve", "--lat", "52.52", "--lon", "13.405", "--json")
	require.NoError(t, err)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "municipality", resp["level"])
	assert.Equal(t, "Polygon", resp["polygon"].(map[string]interface{})["type"])
}

func TestResolveCommand_Errors(t *testing.T) {
	_, err := execute(t, &stubService{}, "resolve", "--lat", "52.52")
	assert.Error(t, err)

	_, err = execute(t, &stubService{}, "resolve", "--lat", "95", "--lon", "0")
	assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)

	_, err = execute(t, &stubService{}, "resolve", "--lat", "1", "--lon", "0", "--levels", "galaxy")
	assert.ErrorIs(t, err, errors.ErrInvalidLevel)

	_, err = execute(t, &stubService{err: errors.ErrNoBoundaryFound}, "resolve", "--lat", "0", "--lon", "0")
	assert.ErrorIs(t, err, errors.ErrNoBoundaryFound)
}

func TestPostalCommand(t *testing.T) {
	svc := &stubService{}
	out, err := execute(t, svc, "postal", "10178")
	require.NoError(t, err)
	assert.Equal(t, "10178", svc.code)
	assert.Contains(t, out, "postal_code")

	_, err = execute(t, svc, "postal")
	assert.Error(t, err)
}

func TestCacheCommands(t *testing.T) {
	svc := &stubService{}

	out, err := execute(t, svc, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Backend: file")
	assert.Contains(t, out, "Entries: 2")
	assert.Contains(t, out, "2024-05-01 12:00:00")

	out, err = execute(t, svc, "cache", "clear")
	require.NoError(t, err)
	assert.True(t, svc.cleared)
	assert.Contains(t, out, "Removed 7 cache entries")
}

func TestFactoryError(t *testing.T) {
	root := NewRootCommand(func(ctx context.Context) (Service, func(), error) {
		return nil, nil, assert.AnError
	})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"cache", "stats"})

	err := root.Execute()
	assert.ErrorIs(t, err, assert.AnError)
}
