package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/boundary-microservice/internal/pkg/errors"
)

// Coordinate - географическая точка. Значение неизменяемо после создания
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// NewCoordinate создаёт координату с проверкой диапазонов
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Latitude: lat, Longitude: lon}
	if !c.Valid() {
		return Coordinate{}, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
			"lat": lat,
			"lon": lon,
		})
	}
	return c, nil
}

// ParseCoordinate разбирает координату из текстового представления
func ParseCoordinate(lat, lon string) (Coordinate, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinate{}, errors.ErrInvalidCoordinates
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Coordinate{}, errors.ErrInvalidCoordinates
	}
	return NewCoordinate(la, lo)
}

// Valid проверяет -90..90 и -180..180
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// Quantize округляет координату до precision знаков после запятой
func (c Coordinate) Quantize(precision int) Coordinate {
	p := math.Pow(10, float64(precision))
	return Coordinate{
		Latitude:  math.Round(c.Latitude*p) / p,
		Longitude: math.Round(c.Longitude*p) / p,
	}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.Latitude, c.Longitude)
}
