package handler

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/domain"
	"github.com/boundary-microservice/internal/pkg/errors"
	"github.com/boundary-microservice/internal/pkg/utils"
	"github.com/boundary-microservice/internal/pkg/validator"
	"github.com/boundary-microservice/internal/usecase"
	"github.com/boundary-microservice/internal/usecase/dto"
)

// BoundaryService - операции use case, которые нужны HTTP слою
type BoundaryService interface {
	GetBoundaryForLevels(ctx context.Context, coord domain.Coordinate, levels []domain.AdministrativeLevel, description string) (*domain.ResolvedBoundary, error)
	GetBoundaryForPostalCode(ctx context.Context, code, description string) (*domain.ResolvedBoundary, error)
	GetBoundaries(ctx context.Context, requests []usecase.BoundaryRequest) []usecase.BoundaryResult
	ClearCache(ctx context.Context) (int, error)
	CacheStats(ctx context.Context) (*domain.CacheStats, error)
}

// BoundaryHandler - обработчик запросов границ
type BoundaryHandler struct {
	boundaryUC BoundaryService
	logger     *zap.Logger
}

// NewBoundaryHandler - создание нового BoundaryHandler
func NewBoundaryHandler(boundaryUC BoundaryService, logger *zap.Logger) *BoundaryHandler {
	return &BoundaryHandler{
		boundaryUC: boundaryUC,
		logger:     logger,
	}
}

// GetBoundary godoc
// @Summary Граница административной единицы для точки
// @Description Возвращает контур самого точного уровня (город, регион, округ, страна), для которого у провайдера есть полигон. Результат кешируется.
// @Tags Boundaries
// @Produce json
// @Param lat query number true "Широта (-90..90)"
// @Param lon query number true "Долгота (-180..180)"
// @Param levels query string false "Уровни через запятую (postal_code, municipality, county_subdivision, county_secondary_subdivision, country)"
// @Param description query string false "Описание маркера"
// @Success 200 {object} utils.SuccessResponse{data=dto.BoundaryResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Failure 504 {object} utils.ErrorResponse
// @Router /api/v1/boundaries [get]
func (h *BoundaryHandler) GetBoundary(c *fiber.Ctx) error {
	var req dto.BoundaryQueryRequest
	var err error
	if req.Lat, err = queryFloat(c, "lat"); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}
	if req.Lon, err = queryFloat(c, "lon"); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}
	req.Levels = c.Query("levels")
	req.Description = c.Query("description")

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	levels, err := domain.ParseLevels(req.Levels)
	if err != nil {
		return utils.SendError(c, err)
	}

	start := time.Now()
	boundary, err := h.boundaryUC.GetBoundaryForLevels(c.Context(), domain.Coordinate{Latitude: *req.Lat, Longitude: *req.Lon}, levels, req.Description)
	if err != nil {
		return utils.SendError(c, toAppError(err))
	}

	return utils.SendSuccess(c, dto.NewBoundaryResponse(boundary), &utils.Meta{
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetBoundariesBatch godoc
// @Summary Пакетное получение границ
// @Description Разрешает границы для нескольких точек за один запрос (до 100). Ошибка одной точки не влияет на остальные.
// @Tags Boundaries
// @Accept json
// @Produce json
// @Param request body dto.BatchBoundaryRequest true "Точки"
// @Success 200 {object} utils.SuccessResponse{data=dto.BatchBoundaryResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/boundaries/batch [post]
func (h *BoundaryHandler) GetBoundariesBatch(c *fiber.Ctx) error {
	var req dto.BatchBoundaryRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"reason": "invalid request body"}))
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	requests := make([]usecase.BoundaryRequest, len(req.Items))
	for i, item := range req.Items {
		levels := make([]domain.AdministrativeLevel, 0, len(item.Levels))
		for _, raw := range item.Levels {
			level, err := domain.ParseLevel(raw)
			if err != nil {
				return utils.SendError(c, err)
			}
			levels = append(levels, level)
		}
		requests[i] = usecase.BoundaryRequest{
			Coordinate:  domain.Coordinate{Latitude: *item.Lat, Longitude: *item.Lon},
			Levels:      levels,
			Description: item.Description,
		}
	}

	start := time.Now()
	results := h.boundaryUC.GetBoundaries(c.Context(), requests)

	resp := dto.BatchBoundaryResponse{
		Results: make([]dto.BatchBoundaryResult, len(results)),
		Total:   len(results),
	}
	for i, r := range results {
		resp.Results[i] = dto.BatchBoundaryResult{Index: i, FromCache: r.FromCache}
		if r.Err != nil {
			resp.Failed++
			resp.Results[i].Error = toAppError(r.Err)
			continue
		}
		resp.Results[i].Boundary = dto.NewBoundaryResponse(r.Boundary)
	}

	h.logger.Debug("Batch boundaries resolved",
		zap.Int("total", resp.Total),
		zap.Int("failed", resp.Failed),
		zap.Duration("duration", time.Since(start)))

	return utils.SendSuccess(c, resp, &utils.Meta{
		Total:    resp.Total,
		Failed:   resp.Failed,
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetPostalCodeBoundary godoc
// @Summary Граница почтового индекса
// @Tags Boundaries
// @Produce json
// @Param code path string true "Почтовый индекс"
// @Param description query string false "Описание маркера"
// @Success 200 {object} utils.SuccessResponse{data=dto.BoundaryResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/boundaries/postal/{code} [get]
func (h *BoundaryHandler) GetPostalCodeBoundary(c *fiber.Ctx) error {
	req := dto.PostalCodeRequest{
		Code:        strings.TrimSpace(c.Params("code")),
		Description: c.Query("description"),
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidPostalCode)
	}

	boundary, err := h.boundaryUC.GetBoundaryForPostalCode(c.Context(), req.Code, req.Description)
	if err != nil {
		return utils.SendError(c, toAppError(err))
	}

	return utils.SendSuccess(c, dto.NewBoundaryResponse(boundary), nil)
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// toAppError приводит ошибку разрешения к AppError для ответа.
// Истёкший контекст запроса - таймаут провайдера
func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return errors.ErrTimeout
	}
	return errors.ErrInternalServer
}
