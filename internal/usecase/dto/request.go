package dto

// BoundaryQueryRequest - запрос границы для точки (query-параметры GET /boundaries)
type BoundaryQueryRequest struct {
	Lat         *float64 `query:"lat" validate:"required,min=-90,max=90"`
	Lon         *float64 `query:"lon" validate:"required,min=-180,max=180"`
	Levels      string   `query:"levels" validate:"omitempty,max=200"`
	Description string   `query:"description" validate:"omitempty,max=500"`
}

// BatchBoundaryRequest - пакетный запрос границ (до 100 точек)
type BatchBoundaryRequest struct {
	Items []BatchBoundaryItem `json:"items" validate:"required,min=1,max=100,dive"`
}

// BatchBoundaryItem - точка пакетного запроса
type BatchBoundaryItem struct {
	Lat         *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon         *float64 `json:"lon" validate:"required,min=-180,max=180"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Levels      []string `json:"levels,omitempty" validate:"omitempty,max=5"`
}

// PostalCodeRequest - запрос границы почтового индекса
type PostalCodeRequest struct {
	Code        string `validate:"required,min=2,max=12"`
	Description string `validate:"omitempty,max=500"`
}
