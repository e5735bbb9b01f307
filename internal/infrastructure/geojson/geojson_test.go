package geojson

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/pkg/errors"
)

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantErr  error
	}{
		{
			name:     "feature collection",
			input:    `{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[1,2],[3,4],[5,6]]]}}]}`,
			wantType: domain.GeometryPolygon,
		},
		{
			name:     "feature collection skips null geometry",
			input:    `{"type":"FeatureCollection","features":[{"geometry":null},{"geometry":{"type":"MultiPolygon","coordinates":[[[[1,2],[3,4],[5,6]]]]}}]}`,
			wantType: domain.GeometryMultiPolygon,
		},
		{
			name:     "feature",
			input:    `{"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[1,2],[3,4],[5,6]]]}}`,
			wantType: domain.GeometryPolygon,
		},
		{
			name:     "bare geometry",
			input:    `{"type":"Polygon","coordinates":[[[1,2],[3,4],[5,6]]]}`,
			wantType: domain.GeometryPolygon,
		},
		{
			name:     "untyped multipolygon coordinates",
			input:    `{"coordinates":[ [ [[1,2],[3,4],[5,6]] ] ]}`,
			wantType: domain.GeometryMultiPolygon,
		},
		{
			name:     "untyped polygon coordinates",
			input:    `{"coordinates":[[[1,2],[3,4],[5,6]]]}`,
			wantType: domain.GeometryPolygon,
		},
		{
			name:    "empty feature collection",
			input:   `{"type":"FeatureCollection","features":[]}`,
			wantErr: errors.ErrNotFound,
		},
		{
			name:    "not json",
			input:   `"oops`,
			wantErr: errors.ErrInvalidGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geometry, err := Unwrap(json.RawMessage(tt.input))
			if tt.wantErr != nil {
				assert.True(t, stderrors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, geometry.Type)
			assert.NotEmpty(t, geometry.Coordinates)
		})
	}
}
