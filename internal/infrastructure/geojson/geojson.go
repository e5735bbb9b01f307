package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/pkg/errors"
)

type object struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometry    json.RawMessage `json:"geometry"`
	Features    []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
}

// Unwrap достаёт geometry из FeatureCollection, Feature или самой геометрии.
// Берётся первая непустая геометрия
func Unwrap(data json.RawMessage) (*domain.RawGeometry, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidGeometry, err)
	}

	switch obj.Type {
	case "FeatureCollection":
		for _, f := range obj.Features {
			if len(f.Geometry) > 0 && string(f.Geometry) != "null" {
				return Unwrap(f.Geometry)
			}
		}
		return nil, errors.ErrNotFound.WithDetails(map[string]interface{}{"reason": "empty feature collection"})
	case "Feature":
		if len(obj.Geometry) == 0 || string(obj.Geometry) == "null" {
			return nil, errors.ErrNotFound.WithDetails(map[string]interface{}{"reason": "feature without geometry"})
		}
		return Unwrap(obj.Geometry)
	case "":
		// старые версии API возвращают только coordinates
		if len(obj.Coordinates) == 0 {
			return nil, errors.ErrNotFound.WithDetails(map[string]interface{}{"reason": "no geometry"})
		}
		geometryType := domain.GeometryPolygon
		if nestingDepth(obj.Coordinates) >= 4 {
			geometryType = domain.GeometryMultiPolygon
		}
		return &domain.RawGeometry{Type: geometryType, Coordinates: obj.Coordinates}, nil
	default:
		return &domain.RawGeometry{Type: obj.Type, Coordinates: obj.Coordinates}, nil
	}
}

// nestingDepth считает ведущие '[': 3 у Polygon, 4 у MultiPolygon
func nestingDepth(raw json.RawMessage) int {
	depth := 0
	for _, b := range raw {
		switch b {
		case '[':
			depth++
		case ' ', '\n', '\r', '\t':
		default:
			return depth
		}
	}
	return depth
}
