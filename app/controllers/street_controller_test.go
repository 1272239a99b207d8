package controllers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/street-mapper/app/responses"
	"github.com/street-mapper/app/services"
	"github.com/street-mapper/internal/boundary"
	"github.com/street-mapper/internal/mapper"
	"github.com/street-mapper/internal/matcher"
	"github.com/street-mapper/internal/overpass"
	"github.com/street-mapper/internal/reference"
)

type stubFetcher struct {
	features []overpass.StreetFeature
	err      error
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) ([]overpass.StreetFeature, error) {
	return s.features, s.err
}

func setupRouter(t *testing.T, fetcher mapper.StreetFetcher, cache services.ICacheService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fc := geojson.NewFeatureCollection()
	for i, sls := range []string{"RT 001", "RT 002"} {
		minLon := 116.070 + float64(i)*0.001
		f := geojson.NewFeature(orb.Polygon{orb.Ring{
			{minLon, -8.580}, {minLon + 0.001, -8.580}, {minLon + 0.001, -8.579},
			{minLon, -8.579}, {minLon, -8.580},
		}})
		f.Properties["nmkec"] = "Ampenan"
		f.Properties["nmdesa"] = "Ampenan Selatan"
		f.Properties["nmlingkungan"] = "Bintaro"
		f.Properties["nmsls"] = sls
		fc.Append(f)
	}
	idx, err := boundary.FromFeatureCollection(fc, "fixture", boundary.DefaultOptions(), zap.NewNop())
	require.NoError(t, err)

	m := mapper.NewMapper(fetcher, idx, mapper.PolicyFirst, zap.NewNop())
	v := reference.NewValidator(reference.Config{Timeout: time.Second}, matcher.NewMatcher(matcher.DefaultConfig()), zap.NewNop())
	sc := NewStreetController(services.NewStreetService(idx, m, v, zap.NewNop()), zap.NewNop())
	ac := NewAdminController(cache, zap.NewNop())

	router := gin.New()
	router.GET("/v1/subdistricts", sc.ListSubDistricts)
	router.GET("/v1/subdistricts/:name/units", sc.ListUnits)
	router.POST("/v1/streets/map", sc.MapStreets)
	router.GET("/v1/streets/export", sc.ExportStreets)
	router.POST("/v1/streets/validate", sc.ValidateStreets)
	router.GET("/v1/boundaries/violations", sc.GetViolations)
	router.GET("/v1/admin/cache/stats", ac.GetCacheStats)
	router.POST("/v1/admin/cache/invalidate", ac.InvalidateCache)
	router.GET("/health", sc.HealthCheck)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) responses.ErrorResponse {
	t.Helper()
	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

var streets = []overpass.StreetFeature{
	{ID: 1, RawName: "Jl. Merdeka", Geometry: orb.LineString{{116.0704, -8.5795}, {116.0706, -8.5795}}},
	{ID: 2, RawName: "Gg Mawar", Geometry: orb.LineString{{116.0714, -8.5795}, {116.0716, -8.5795}}},
}

func TestMapStreets(t *testing.T) {
	t.Run("Có dữ liệu", func(t *testing.T) {
		router := setupRouter(t, &stubFetcher{features: streets}, nil)
		w := doRequest(router, http.MethodPost, "/v1/streets/map", `{"sub_district":"ampenan"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp responses.MapStreetsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Empty)
		assert.Equal(t, "Ampenan", resp.SubDistrict)
		assert.Len(t, resp.Records, 2)
		assert.Equal(t, 2, resp.Summary.SubUnits)
	})

	t.Run("Rỗng vẫn 200", func(t *testing.T) {
		router := setupRouter(t, &stubFetcher{}, nil)
		w := doRequest(router, http.MethodPost, "/v1/streets/map", `{"sub_district":"Ampenan"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp responses.MapStreetsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Empty)
		assert.NotEmpty(t, resp.Message)
		assert.NotNil(t, resp.Records)
	})

	testCases := []struct {
		name    string
		fetcher *stubFetcher
		body    string
		status  int
		code    string
		kind    string
	}{
		{"Thiếu sub_district", &stubFetcher{}, `{}`, http.StatusBadRequest, "INVALID_REQUEST", ""},
		{"Kecamatan lạ", &stubFetcher{}, `{"sub_district":"Cakranegara"}`, http.StatusNotFound, "UNKNOWN_SUB_DISTRICT", ""},
		{
			"Overpass timeout",
			&stubFetcher{err: &overpass.FetchError{Kind: overpass.KindTimeout, SubDistrict: "Ampenan"}},
			`{"sub_district":"Ampenan"}`,
			http.StatusBadGateway, "FETCH_ERROR", "timeout",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(t, tc.fetcher, nil)
			w := doRequest(router, http.MethodPost, "/v1/streets/map", tc.body)
			assert.Equal(t, tc.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tc.code, resp.Error)
			assert.Equal(t, tc.kind, resp.Kind)
		})
	}
}

func TestExportStreets(t *testing.T) {
	router := setupRouter(t, &stubFetcher{features: streets}, nil)

	w := doRequest(router, http.MethodGet, "/v1/streets/export?sub_district=Ampenan", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=peta_jalan_Ampenan.xlsx", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	w = doRequest(router, http.MethodGet, "/v1/streets/export?sub_district=Ampenan&format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Nama Jalan dan Gang,"))

	w = doRequest(router, http.MethodGet, "/v1/streets/export?sub_district=Ampenan&format=pdf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/v1/streets/export", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	empty := setupRouter(t, &stubFetcher{}, nil)
	w = doRequest(empty, http.MethodGet, "/v1/streets/export?sub_district=Ampenan", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp responses.EmptyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Empty)
}

func TestContentDisposition(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
	}{
		{"ASCII", "peta_jalan_Ampenan.xlsx"},
		{"Có khoảng trắng", "peta_jalan_Sekar Bela.csv"},
		{"Có dấu nháy", `peta_jalan_Sekar"Bela.csv`},
		{"Không phải ASCII", "peta_jalan_Cakranegara Đông.xlsx"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			header := contentDisposition(tc.fileName)
			disposition, params, err := mime.ParseMediaType(header)
			require.NoError(t, err)
			assert.Equal(t, "attachment", disposition)
			assert.Equal(t, tc.fileName, params["filename"])
		})
	}

	assert.Contains(t, contentDisposition("peta_jalan_Đông.xlsx"), "filename*=utf-8''")
}

func TestValidateStreets(t *testing.T) {
	sheet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "PRIVATE") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("Nama Jalan\nJl. Merdeka\n"))
	}))
	defer sheet.Close()

	router := setupRouter(t, &stubFetcher{features: streets}, nil)

	t.Run("Báo cáo", func(t *testing.T) {
		body := `{"sub_district":"Ampenan","reference_url":"` + sheet.URL + `/spreadsheets/d/OK/edit"}`
		w := doRequest(router, http.MethodPost, "/v1/streets/validate", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp responses.ValidateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Report)
		assert.Equal(t, 1, resp.Report.Exact)
		assert.Equal(t, 1, resp.Report.None)
		assert.Equal(t, 2, resp.Summary.TotalStreets)
	})

	t.Run("Sheet private", func(t *testing.T) {
		body := `{"sub_district":"Ampenan","reference_url":"` + sheet.URL + `/spreadsheets/d/PRIVATE/edit"}`
		w := doRequest(router, http.MethodPost, "/v1/streets/validate", body)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "REFERENCE_FETCH_ERROR", resp.Error)
		assert.Equal(t, "not_public", resp.Kind)
	})

	t.Run("URL không hợp lệ", func(t *testing.T) {
		body := `{"sub_district":"Ampenan","reference_url":"mailto:someone@example.com"}`
		w := doRequest(router, http.MethodPost, "/v1/streets/validate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_url", decodeError(t, w).Kind)
	})
}

func TestListEndpoints(t *testing.T) {
	router := setupRouter(t, &stubFetcher{}, nil)

	w := doRequest(router, http.MethodGet, "/v1/subdistricts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var districts responses.SubDistrictsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &districts))
	assert.Equal(t, []string{"Ampenan"}, districts.SubDistricts)

	w = doRequest(router, http.MethodGet, "/v1/subdistricts/Ampenan/units?level=kelurahan", "")
	require.Equal(t, http.StatusOK, w.Code)
	var units responses.UnitsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &units))
	assert.Equal(t, "kelurahan", units.Level)
	assert.Equal(t, 1, units.Total)

	w = doRequest(router, http.MethodGet, "/v1/subdistricts/Ampenan/units?level=provinsi", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/v1/subdistricts/Nowhere/units", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/v1/boundaries/violations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"violations":[],"total":0}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminCache(t *testing.T) {
	t.Run("Cache tắt", func(t *testing.T) {
		router := setupRouter(t, &stubFetcher{}, nil)
		w := doRequest(router, http.MethodGet, "/v1/admin/cache/stats", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"enabled":false`)

		w = doRequest(router, http.MethodPost, "/v1/admin/cache/invalidate", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Cache bật", func(t *testing.T) {
		cache := services.NewMemoryCacheService(10, time.Hour, zap.NewNop())
		require.NoError(t, cache.Set(context.Background(), "k", []byte("v")))
		router := setupRouter(t, &stubFetcher{}, cache)

		w := doRequest(router, http.MethodGet, "/v1/admin/cache/stats", "")
		require.Equal(t, http.StatusOK, w.Code)
		var stats responses.CacheStatsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.True(t, stats.Enabled)
		assert.Equal(t, int64(1), stats.TotalItems)

		w = doRequest(router, http.MethodPost, "/v1/admin/cache/invalidate", "")
		require.Equal(t, http.StatusOK, w.Code)
		_, found, _ := cache.Get(context.Background(), "k")
		assert.False(t, found)
	})
}
