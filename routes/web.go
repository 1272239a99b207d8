package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupWebRoutes thiết lập web routes
func SetupWebRoutes(router *gin.Engine) {
	// Home page
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Street Mapper Service",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"subdistricts": "GET /v1/subdistricts",
				"units":        "GET /v1/subdistricts/:name/units?level=",
				"map":          "POST /v1/streets/map",
				"export":       "GET /v1/streets/export?sub_district=&format=xlsx|csv",
				"validate":     "POST /v1/streets/validate",
				"violations":   "GET /v1/boundaries/violations",
				"health":       "GET /health",
				"metrics":      "GET /metrics",
			},
		})
	})
}
