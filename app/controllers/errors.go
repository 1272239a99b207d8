package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/street-mapper/app/responses"
	"github.com/street-mapper/app/services"
	"github.com/street-mapper/internal/overpass"
	"github.com/street-mapper/internal/reference"
)

// RequestIDKey key lưu request ID trong gin.Context
const RequestIDKey = "request_id"

func errorBody(c *gin.Context, code, message, kind string) responses.ErrorResponse {
	return responses.ErrorResponse{
		Error:     code,
		Message:   message,
		Kind:      kind,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: c.GetString(RequestIDKey),
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody(c, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error(), ""))
}

// respondError ánh xạ lỗi của service sang mã HTTP và ErrorResponse
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var fetchErr *overpass.FetchError
	var refErr *reference.ReferenceFetchError

	switch {
	case errors.Is(err, services.ErrUnknownSubDistrict):
		c.JSON(http.StatusNotFound, errorBody(c, "UNKNOWN_SUB_DISTRICT", "Không tìm thấy kecamatan: "+err.Error(), ""))

	case errors.Is(err, services.ErrUnsupportedFormat):
		badRequest(c, err)

	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, errorBody(c, "FETCH_ERROR",
			"Không lấy được dữ liệu jalan/gang từ Overpass, vui lòng thử lại", string(fetchErr.Kind)))

	case errors.As(err, &refErr):
		status := http.StatusBadGateway
		if refErr.Kind == reference.KindInvalidURL {
			status = http.StatusBadRequest
		}
		c.JSON(status, errorBody(c, "REFERENCE_FETCH_ERROR", refErr.Message(), string(refErr.Kind)))

	default:
		logger.Error("Lỗi không xác định", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, errorBody(c, "INTERNAL_ERROR", "Lỗi hệ thống: "+err.Error(), ""))
	}
}
