package domain

import "github.com/google/uuid"

// Stream names
const (
	StreamBoundaryResolve = "stream:boundary:resolve"
	StreamBoundaryDone    = "stream:boundary:done"
)

// BoundaryResolveEvent - входящее событие на прогрев границы для маркера
type BoundaryResolveEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	Latitude    float64   `json:"lat"`
	Longitude   float64   `json:"lon"`
	Description string    `json:"description,omitempty"`
	Levels      []string  `json:"levels,omitempty"`
}

// Coordinate проверяет и возвращает координату события
func (e *BoundaryResolveEvent) Coordinate() (Coordinate, error) {
	return NewCoordinate(e.Latitude, e.Longitude)
}

// ParsedLevels разбирает запрошенные уровни; пустой список - цепочка по умолчанию
func (e *BoundaryResolveEvent) ParsedLevels() ([]AdministrativeLevel, error) {
	levels := make([]AdministrativeLevel, 0, len(e.Levels))
	for _, raw := range e.Levels {
		level, err := ParseLevel(raw)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// BoundaryDoneEvent - результат разрешения границы
type BoundaryDoneEvent struct {
	RequestID uuid.UUID        `json:"request_id"`
	Boundary  *BoundarySummary `json:"boundary,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	FromCache bool             `json:"from_cache"`
}

// BoundarySummary - краткая информация о границе без кольца
type BoundarySummary struct {
	Level      string `json:"level"`
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	GeometryID string `json:"geometry_id"`
	Points     int    `json:"points"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
