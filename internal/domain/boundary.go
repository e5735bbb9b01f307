package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/boundary-microservice/internal/pkg/errors"
)

// MinRingPoints - минимальное число точек кольца, ниже которого граница не считается найденной
const MinRingPoints = 3

// AddressRecord - административный адрес точки из обратного геокодирования
type AddressRecord struct {
	PostalCode                  string `json:"postal_code,omitempty"`
	Municipality                string `json:"municipality,omitempty"`
	LocalName                   string `json:"local_name,omitempty"`
	CountrySubdivision          string `json:"country_subdivision,omitempty"`
	CountrySecondarySubdivision string `json:"country_secondary_subdivision,omitempty"`
	Country                     string `json:"country,omitempty"`
	CountryCode                 string `json:"country_code,omitempty"`
	FreeformAddress             string `json:"freeform_address,omitempty"`
}

// NameFor возвращает название сущности для уровня или пустую строку
func (a *AddressRecord) NameFor(level AdministrativeLevel) string {
	if a == nil {
		return ""
	}
	switch level {
	case LevelPostalCode:
		return a.PostalCode
	case LevelMunicipality:
		if a.Municipality != "" {
			return a.Municipality
		}
		return a.LocalName
	case LevelCountySubdivision:
		return a.CountrySubdivision
	case LevelCountySecondarySubdivision:
		return a.CountrySecondarySubdivision
	case LevelCountry:
		return a.Country
	}
	return ""
}

// BoundaryQuery - запрос на разрешение границы, не сохраняется
type BoundaryQuery struct {
	Coordinate Coordinate
	Levels     []AdministrativeLevel
}

// NormalizedLevels возвращает уровни запроса в порядке приоритета
func (q BoundaryQuery) NormalizedLevels() []AdministrativeLevel {
	if len(q.Levels) == 0 {
		return DefaultLevels()
	}
	return SortLevels(q.Levels)
}

// ResolvedBoundary - найденная граница места, содержащего точку
type ResolvedBoundary struct {
	Level         AdministrativeLevel `json:"level"`
	Name          string              `json:"name"`
	EntityType    string              `json:"entity_type"`
	GeometryID    string              `json:"geometry_id"`
	Ring          []Coordinate        `json:"ring"`
	SourceAddress AddressRecord       `json:"source_address"`
	Description   string              `json:"description,omitempty"`
	Provider      string              `json:"provider,omitempty"`
}

// Clone возвращает независимую копию границы
func (b *ResolvedBoundary) Clone() *ResolvedBoundary {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Ring = make([]Coordinate, len(b.Ring))
	copy(cp.Ring, b.Ring)
	return &cp
}

// Geometry types GeoJSON
const (
	GeometryPolygon      = "Polygon"
	GeometryMultiPolygon = "MultiPolygon"
)

// RawGeometry - геометрия провайдера в виде GeoJSON: позиции [lng, lat]
type RawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// CacheEntryVersion - версия формата записи кеша
const CacheEntryVersion = 1

// CacheEntry - сохранённая граница для одного ключа кеша. Не изменяется, только заменяется
type CacheEntry struct {
	Version    int               `json:"version"`
	Key        string            `json:"key"`
	Timestamp  time.Time         `json:"timestamp"`
	Coordinate *Coordinate       `json:"coordinate,omitempty"`
	PostalCode string            `json:"postal_code,omitempty"`
	Boundary   *ResolvedBoundary `json:"boundary"`
}

// CacheStats - статистика кеша для операционной видимости
type CacheStats struct {
	Backend        string     `json:"backend"`
	Entries        int        `json:"entries"`
	TotalSizeBytes int64      `json:"total_size_bytes"`
	Oldest         *time.Time `json:"oldest,omitempty"`
	Newest         *time.Time `json:"newest,omitempty"`
	Hits           uint64     `json:"hits"`
	Misses         uint64     `json:"misses"`
}

// RecordSummary - сводка хранилища записей по метаданным, без чтения самих записей
type RecordSummary struct {
	Count      int
	TotalBytes int64
	Oldest     *time.Time
	Newest     *time.Time
}

// Observe учитывает одну запись в сводке
func (s *RecordSummary) Observe(size int64, updatedAt time.Time) {
	s.Count++
	s.TotalBytes += size
	if s.Oldest == nil || updatedAt.Before(*s.Oldest) {
		t := updatedAt
		s.Oldest = &t
	}
	if s.Newest == nil || updatedAt.After(*s.Newest) {
		t := updatedAt
		s.Newest = &t
	}
}

// NormalizePostalCode приводит почтовый индекс к виду для запросов и ключей кеша:
// без крайних пробелов, в верхнем регистре, 2-12 символов из букв, цифр, пробела и дефиса
func NormalizePostalCode(code string) (string, error) {
	code = strings.ToUpper(strings.Join(strings.Fields(code), " "))
	if len(code) < 2 || len(code) > 12 {
		return "", errors.ErrInvalidPostalCode
	}
	for _, r := range code {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '-':
		default:
			return "", errors.ErrInvalidPostalCode.WithDetails(map[string]interface{}{"code": code})
		}
	}
	return code, nil
}
