package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/street-mapper/app/controllers"
	"github.com/street-mapper/app/services"
	"github.com/street-mapper/internal/boundary"
	"github.com/street-mapper/internal/mapper"
	"github.com/street-mapper/internal/reference"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Polygon{orb.Ring{
		{116.07, -8.58}, {116.071, -8.58}, {116.071, -8.579}, {116.07, -8.579}, {116.07, -8.58},
	}})
	f.Properties["nmkec"] = "Ampenan"
	f.Properties["nmdesa"] = "Ampenan Selatan"
	f.Properties["nmlingkungan"] = "Bintaro"
	f.Properties["nmsls"] = "RT 001"
	fc.Append(f)

	idx, err := boundary.FromFeatureCollection(fc, "fixture", boundary.DefaultOptions(), zap.NewNop())
	require.NoError(t, err)

	svc := services.NewStreetService(idx, mapper.NewMapper(nil, idx, mapper.PolicyFirst, zap.NewNop()),
		reference.NewValidator(reference.Config{}, nil, zap.NewNop()), zap.NewNop())

	router := gin.New()
	SetupAllRoutes(router, controllers.NewStreetController(svc, zap.NewNop()), controllers.NewAdminController(nil, zap.NewNop()))
	return router
}

func TestSetupAllRoutes(t *testing.T) {
	router := setupTestRouter(t)

	testCases := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"Trang chủ", http.MethodGet, "/", http.StatusOK},
		{"Health", http.MethodGet, "/health", http.StatusOK},
		{"Ready", http.MethodGet, "/ready", http.StatusOK},
		{"Live", http.MethodGet, "/live", http.StatusOK},
		{"Health v1", http.MethodGet, "/v1/health", http.StatusOK},
		{"Kecamatan", http.MethodGet, "/v1/subdistricts", http.StatusOK},
		{"Đơn vị", http.MethodGet, "/v1/subdistricts/Ampenan/units", http.StatusOK},
		{"Vi phạm", http.MethodGet, "/v1/boundaries/violations", http.StatusOK},
		{"Cache stats", http.MethodGet, "/v1/admin/cache/stats", http.StatusOK},
		{"Không có route", http.MethodGet, "/v2/nothing", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	// tạo ít nhất một mẫu cho counter HTTP
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "streetmap_http_requests_total")
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 8)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "client-id", w.Header().Get("X-Request-ID"))
}
