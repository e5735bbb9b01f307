package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/boundary-microservice/internal/pkg/utils"
	"github.com/boundary-microservice/internal/usecase/dto"
)

// CacheHandler - обработчик операций с кешем границ
type CacheHandler struct {
	boundaryUC BoundaryService
	logger     *zap.Logger
}

// NewCacheHandler - создание нового CacheHandler
func NewCacheHandler(boundaryUC BoundaryService, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		boundaryUC: boundaryUC,
		logger:     logger,
	}
}

// GetStats godoc
// @Summary Статистика кеша границ
// @Tags Cache
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.CacheStatsResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/cache/stats [get]
func (h *CacheHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.boundaryUC.CacheStats(c.Context())
	if err != nil {
		h.logger.Error("Failed to get cache stats", zap.Error(err))
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewCacheStatsResponse(stats), nil)
}

// Clear godoc
// @Summary Очистка кеша границ
// @Tags Cache
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.ClearCacheResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/cache [delete]
func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	removed, err := h.boundaryUC.ClearCache(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.ClearCacheResponse{Removed: removed}, nil)
}
