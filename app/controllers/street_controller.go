package controllers

import (
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/street-mapper/app/models"
	"github.com/street-mapper/app/requests"
	"github.com/street-mapper/app/responses"
	"github.com/street-mapper/app/services"
	"github.com/street-mapper/internal/boundary"
)

const emptyMessage = "Không tìm thấy jalan/gang nào trong kecamatan này"

// StreetController controller xử lý các request mapping jalan/gang
type StreetController struct {
	streetService *services.StreetService
	logger        *zap.Logger
}

// NewStreetController tạo mới StreetController
func NewStreetController(streetService *services.StreetService, logger *zap.Logger) *StreetController {
	return &StreetController{
		streetService: streetService,
		logger:        logger,
	}
}

// ListSubDistricts danh sách kecamatan
func (sc *StreetController) ListSubDistricts(c *gin.Context) {
	names := sc.streetService.ListSubDistricts()
	c.JSON(http.StatusOK, responses.SubDistrictsResponse{
		SubDistricts: names,
		Total:        len(names),
	})
}

// ListUnits đơn vị hành chính thuộc kecamatan, ?level= mặc định sls
func (sc *StreetController) ListUnits(c *gin.Context) {
	level := boundary.LevelSubUnit
	if raw := c.Query("level"); raw != "" {
		parsed, err := boundary.ParseLevel(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		level = parsed
	}

	units, err := sc.streetService.ListUnits(c.Param("name"), level)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	subDistrict := c.Param("name")
	if len(units) > 0 {
		subDistrict = units[0].Chain.SubDistrict
	}
	c.JSON(http.StatusOK, responses.UnitsResponse{
		SubDistrict: subDistrict,
		Level:       level.String(),
		Units:       units,
		Total:       len(units),
	})
}

// MapStreets mapping jalan/gang của kecamatan vào SLS
func (sc *StreetController) MapStreets(c *gin.Context) {
	var req requests.MapStreetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	startTime := time.Now()
	outcome, err := sc.streetService.MapStreets(c.Request.Context(), req.SubDistrict)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	result := outcome.Result
	resp := responses.MapStreetsResponse{
		SubDistrict:      result.SubDistrict,
		Empty:            result.Empty(),
		Summary:          outcome.Summary,
		Records:          result.Records,
		Fetched:          result.Fetched,
		Skipped:          result.Skipped,
		Duplicates:       result.Duplicates,
		Fallbacks:        result.Fallbacks,
		SkippedFeatures:  result.SkippedFeatures,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	}
	if resp.Empty {
		resp.Message = emptyMessage
	} else {
		resp.Message = fmt.Sprintf("Đã gán %d jalan/gang vào %d SLS", outcome.Summary.TotalStreets, outcome.Summary.SubUnits)
	}

	c.JSON(http.StatusOK, resp)
}

// ExportStreets tải file xlsx/csv kết quả mapping
func (sc *StreetController) ExportStreets(c *gin.Context) {
	var query requests.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	file, err := sc.streetService.Export(c.Request.Context(), query.SubDistrict, query.Format)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	if file.Records == 0 {
		c.JSON(http.StatusOK, responses.EmptyResponse{
			SubDistrict: query.SubDistrict,
			Empty:       true,
			Message:     emptyMessage,
		})
		return
	}

	c.Header("Content-Disposition", contentDisposition(file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// contentDisposition escape tên file; tên có dấu dùng filename* (RFC 2231)
func contentDisposition(fileName string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}

// ValidateStreets đối chiếu kết quả mapping với sheet tham chiếu
func (sc *StreetController) ValidateStreets(c *gin.Context) {
	var req requests.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	startTime := time.Now()
	outcome, err := sc.streetService.Validate(c.Request.Context(), req.SubDistrict, req.ReferenceURL)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	c.JSON(http.StatusOK, responses.ValidateResponse{
		SubDistrict:      outcome.Result.SubDistrict,
		Empty:            outcome.Result.Empty(),
		Summary:          models.Summarize(outcome.Result.Records),
		Report:           outcome.Report,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// GetViolations vi phạm cây hành chính phát hiện lúc load ranh giới
func (sc *StreetController) GetViolations(c *gin.Context) {
	violations := sc.streetService.Violations()
	if violations == nil {
		violations = []boundary.TreeViolation{}
	}
	c.JSON(http.StatusOK, responses.ViolationsResponse{
		Violations: violations,
		Total:      len(violations),
	})
}

// HealthCheck kiểm tra sức khỏe service
func (sc *StreetController) HealthCheck(c *gin.Context) {
	uptime := time.Since(sc.streetService.GetStartTime())

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.String(),
		Version:   "1.0.0",
		Services: map[string]string{
			"boundary_index": "healthy",
			"street_mapper":  "healthy",
		},
	})
}
