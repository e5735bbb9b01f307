package utils

import (
	"math"

	"github.com/boundary-microservice/internal/domain"
)

// BoundingBox возвращает [minLon, minLat, maxLon, maxLat] кольца, порядок GeoJSON bbox.
// Для пустого кольца - нули
func BoundingBox(ring []domain.Coordinate) [4]float64 {
	if len(ring) == 0 {
		return [4]float64{}
	}
	box := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, c := range ring {
		box[0] = math.Min(box[0], c.Longitude)
		box[1] = math.Min(box[1], c.Latitude)
		box[2] = math.Max(box[2], c.Longitude)
		box[3] = math.Max(box[3], c.Latitude)
	}
	return box
}

// ClosedRing возвращает кольцо [lng, lat], у которого последняя точка совпадает с первой
func ClosedRing(ring []domain.Coordinate) [][2]float64 {
	out := make([][2]float64, 0, len(ring)+1)
	for _, c := range ring {
		out = append(out, [2]float64{c.Longitude, c.Latitude})
	}
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}
