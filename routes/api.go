package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/street-mapper/app/controllers"
)

// SetupAPIRoutes thiết lập tất cả API routes
func SetupAPIRoutes(router *gin.Engine, streetController *controllers.StreetController, adminController *controllers.AdminController) {
	// API v1 group
	v1 := router.Group("/v1")
	{
		// Ranh giới hành chính
		v1.GET("/subdistricts", streetController.ListSubDistricts)
		v1.GET("/subdistricts/:name/units", streetController.ListUnits)
		v1.GET("/boundaries/violations", streetController.GetViolations)

		// Mapping jalan/gang
		streets := v1.Group("/streets")
		{
			streets.POST("/map", streetController.MapStreets)
			streets.GET("/export", streetController.ExportStreets)
			streets.POST("/validate", streetController.ValidateStreets)
		}

		// Admin routes
		admin := v1.Group("/admin")
		{
			admin.GET("/cache/stats", adminController.GetCacheStats)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
		}

		// Health check route
		v1.GET("/health", streetController.HealthCheck)
	}
}

// SetupHealthRoutes thiết lập health check routes
func SetupHealthRoutes(router *gin.Engine, streetController *controllers.StreetController) {
	// Root health check
	router.GET("/health", streetController.HealthCheck)

	// Readiness check
	router.GET("/ready", streetController.HealthCheck)

	// Liveness check
	router.GET("/live", streetController.HealthCheck)
}
