package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/street-mapper/app/responses"
	"github.com/street-mapper/app/services"
)

// AdminController controller xử lý các request admin.
// cacheService nil khi cache.enabled = false.
type AdminController struct {
	cacheService services.ICacheService
	logger       *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(cacheService services.ICacheService, logger *zap.Logger) *AdminController {
	return &AdminController{
		cacheService: cacheService,
		logger:       logger,
	}
}

// GetCacheStats thống kê cache response Overpass
func (ac *AdminController) GetCacheStats(c *gin.Context) {
	if ac.cacheService == nil {
		c.JSON(http.StatusOK, responses.CacheStatsResponse{Enabled: false})
		return
	}

	stats, err := ac.cacheService.GetStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi lấy thống kê cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody(c, "CACHE_ERROR", "Lỗi lấy thống kê cache: "+err.Error(), ""))
		return
	}

	c.JSON(http.StatusOK, responses.CacheStatsResponse{
		Enabled:    true,
		HitRate:    stats.HitRate,
		TotalHits:  stats.TotalHits,
		TotalMiss:  stats.TotalMiss,
		TotalItems: stats.TotalItems,
	})
}

// InvalidateCache xóa toàn bộ cache response Overpass
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	if ac.cacheService == nil {
		c.JSON(http.StatusOK, responses.SuccessResponse{
			Success:   true,
			Message:   "Cache đang tắt, không có gì để xóa",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	if err := ac.cacheService.Clear(c.Request.Context()); err != nil {
		ac.logger.Error("Lỗi invalidate cache", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody(c, "CACHE_ERROR", "Lỗi invalidate cache: "+err.Error(), ""))
		return
	}

	ac.logger.Info("Đã invalidate cache response Overpass")
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "Đã xóa cache",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
