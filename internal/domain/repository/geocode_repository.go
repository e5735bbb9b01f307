package repository

import (
	"context"

	"github.com/boundary-microservice/internal/domain"
)

// GeocodeRepository определяет логические операции провайдера геокодирования.
// Реализации изолируют формат запросов конкретного вендора; бизнес-логики и кеширования нет
type GeocodeRepository interface {
	// Name возвращает идентификатор провайдера
	Name() string

	// ReverseGeocode возвращает административный адрес точки (ErrNotFound, ErrTimeout)
	ReverseGeocode(ctx context.Context, coord domain.Coordinate) (*domain.AddressRecord, error)

	// SearchEntity ищет сущность заданного уровня по названию и возвращает ID геометрии
	SearchEntity(ctx context.Context, query string, level domain.AdministrativeLevel) (string, error)

	// FetchGeometry загружает геометрию Polygon/MultiPolygon по ID
	FetchGeometry(ctx context.Context, geometryID string) (*domain.RawGeometry, error)
}
