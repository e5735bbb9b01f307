package dto

import (
	"time"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/pkg/errors"
	"github.com/boundary-microservice/internal/pkg/utils"
)

// BoundaryResponse - граница для рендерера: кольцо [{lat, lon}] и тот же контур в GeoJSON
type BoundaryResponse struct {
	Level         string               `json:"level"`
	Name          string               `json:"name"`
	EntityType    string               `json:"entity_type"`
	GeometryID    string               `json:"geometry_id"`
	Provider      string               `json:"provider,omitempty"`
	Description   string               `json:"description,omitempty"`
	Ring          []domain.Coordinate  `json:"ring"`
	Polygon       GeoJSONPolygon       `json:"polygon"`
	BBox          [4]float64           `json:"bbox"`
	SourceAddress domain.AddressRecord `json:"source_address"`
}

// GeoJSONPolygon - замкнутое кольцо в порядке [lng, lat]
type GeoJSONPolygon struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// NewBoundaryResponse собирает ответ из найденной границы
func NewBoundaryResponse(b *domain.ResolvedBoundary) *BoundaryResponse {
	if b == nil {
		return nil
	}
	return &BoundaryResponse{
		Level:       b.Level.String(),
		Name:        b.Name,
		EntityType:  b.EntityType,
		GeometryID:  b.GeometryID,
		Provider:    b.Provider,
		Description: b.Description,
		Ring:        b.Ring,
		Polygon: GeoJSONPolygon{
			Type:        domain.GeometryPolygon,
			Coordinates: [][][2]float64{utils.ClosedRing(b.Ring)},
		},
		BBox:          utils.BoundingBox(b.Ring),
		SourceAddress: b.SourceAddress,
	}
}

// BatchBoundaryResponse - ответ на пакетный запрос, порядок совпадает с запросом
type BatchBoundaryResponse struct {
	Results []BatchBoundaryResult `json:"results"`
	Total   int                   `json:"total"`
	Failed  int                   `json:"failed"`
}

// BatchBoundaryResult - результат одной точки: граница или ошибка
type BatchBoundaryResult struct {
	Index     int               `json:"index"`
	Boundary  *BoundaryResponse `json:"boundary,omitempty"`
	Error     *errors.AppError  `json:"error,omitempty"`
	FromCache bool              `json:"from_cache"`
}

// CacheStatsResponse - статистика кеша
type CacheStatsResponse struct {
	Backend        string     `json:"backend"`
	Entries        int        `json:"entries"`
	TotalSizeBytes int64      `json:"total_size_bytes"`
	Oldest         *time.Time `json:"oldest,omitempty"`
	Newest         *time.Time `json:"newest,omitempty"`
	Hits           uint64     `json:"hits"`
	Misses         uint64     `json:"misses"`
	HitRatio       float64    `json:"hit_ratio"`
}

// NewCacheStatsResponse считает долю попаданий
func NewCacheStatsResponse(s *domain.CacheStats) *CacheStatsResponse {
	resp := &CacheStatsResponse{
		Backend:        s.Backend,
		Entries:        s.Entries,
		TotalSizeBytes: s.TotalSizeBytes,
		Oldest:         s.Oldest,
		Newest:         s.Newest,
		Hits:           s.Hits,
		Misses:         s.Misses,
	}
	if total := s.Hits + s.Misses; total > 0 {
		resp.HitRatio = float64(s.Hits) / float64(total)
	}
	return resp
}

// ClearCacheResponse - результат очистки кеша
type ClearCacheResponse struct {
	Removed int `json:"removed"`
}
