package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/pkg/errors"
)

// NormalizeGeometry приводит геометрию провайдера к одному внешнему кольцу.
// Polygon - внешнее кольцо, MultiPolygon - внешнее кольцо части с наибольшим числом точек
// (при равенстве первая). Позиции [lng, lat] переводятся в Coordinate{lat, lng}.
// Кольцо возвращается как есть: без замыкания и смены обхода
func NormalizeGeometry(geometry *domain.RawGeometry) ([]domain.Coordinate, error) {
	if geometry == nil || len(geometry.Coordinates) == 0 {
		return nil, invalidGeometry("empty geometry", nil)
	}

	var outer [][]float64

	switch geometry.Type {
	case domain.GeometryPolygon:
		var rings [][][]float64
		if err := json.Unmarshal(geometry.Coordinates, &rings); err != nil {
			return nil, invalidGeometry("malformed polygon", err)
		}
		if len(rings) == 0 {
			return nil, invalidGeometry("polygon without rings", nil)
		}
		outer = rings[0]

	case domain.GeometryMultiPolygon:
		var polygons [][][][]float64
		if err := json.Unmarshal(geometry.Coordinates, &polygons); err != nil {
			return nil, invalidGeometry("malformed multipolygon", err)
		}
		for _, polygon := range polygons {
			if len(polygon) == 0 {
				continue
			}
			if len(polygon[0]) > len(outer) {
				outer = polygon[0]
			}
		}
		if outer == nil {
			return nil, invalidGeometry("multipolygon without rings", nil)
		}

	default:
		return nil, errors.ErrInvalidGeometry.WithDetails(map[string]interface{}{
			"reason": "unsupported geometry type",
			"type":   geometry.Type,
		})
	}

	ring := make([]domain.Coordinate, 0, len(outer))
	distinct := make(map[domain.Coordinate]struct{}, len(outer))
	for i, position := range outer {
		if len(position) < 2 {
			return nil, errors.ErrInvalidGeometry.WithDetails(map[string]interface{}{
				"reason": "position has fewer than 2 values",
				"index":  i,
			})
		}
		c := domain.Coordinate{Latitude: position[1], Longitude: position[0]}
		if !c.Valid() {
			return nil, errors.ErrInvalidGeometry.WithDetails(map[string]interface{}{
				"reason": "position out of range",
				"index":  i,
			})
		}
		ring = append(ring, c)
		distinct[c] = struct{}{}
	}

	if len(distinct) < domain.MinRingPoints {
		return nil, errors.ErrInvalidGeometry.WithDetails(map[string]interface{}{
			"reason":          "too few distinct points",
			"distinct_points": len(distinct),
		})
	}

	return ring, nil
}

func invalidGeometry(reason string, cause error) error {
	details := map[string]interface{}{"reason": reason}
	if cause != nil {
		details["cause"] = cause.Error()
		return fmt.Errorf("%w: %v", errors.ErrInvalidGeometry.WithDetails(details), cause)
	}
	return errors.ErrInvalidGeometry.WithDetails(details)
}
