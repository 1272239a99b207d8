package responses

import (
	"github.com/street-mapper/app/models"
	"github.com/street-mapper/internal/boundary"
	"github.com/street-mapper/internal/mapper"
	"github.com/street-mapper/internal/reference"
)

// SubDistrictsResponse danh sách kecamatan
type SubDistrictsResponse struct {
	SubDistricts []string `json:"sub_districts"` // Tên kecamatan đã sắp xếp
	Total        int      `json:"total"`         // Số kecamatan
}

// UnitsResponse các đơn vị thuộc một kecamatan
type UnitsResponse struct {
	SubDistrict string          `json:"sub_district"` // Kecamatan
	Level       string          `json:"level"`        // Cấp được liệt kê
	Units       []boundary.Unit `json:"units"`        // Danh sách đơn vị
	Total       int             `json:"total"`        // Số đơn vị
}

// MapStreetsResponse response mapping jalan/gang
type MapStreetsResponse struct {
	SubDistrict      string                  `json:"sub_district"`       // Kecamatan
	Empty            bool                    `json:"empty"`              // Không có jalan/gang nào
	Message          string                  `json:"message"`            // Thông báo
	Summary          models.Summary          `json:"summary"`            // Số liệu tổng hợp
	Records          []models.StreetRecord   `json:"records"`            // Kết quả
	Fetched          int                     `json:"fetched"`            // Số way nhận từ Overpass
	Skipped          int                     `json:"skipped"`            // Số way bị bỏ qua
	Duplicates       int                     `json:"duplicates"`         // Số way trùng đã gộp
	Fallbacks        int                     `json:"fallbacks"`          // Số điểm resolve bằng fallback
	SkippedFeatures  []mapper.SkippedFeature `json:"skipped_features"`   // Chi tiết way bị bỏ qua
	ProcessingTimeMs int64                   `json:"processing_time_ms"` // Thời gian xử lý (ms)
}

// ValidateResponse response đối chiếu sheet tham chiếu
type ValidateResponse struct {
	SubDistrict      string            `json:"sub_district"`       // Kecamatan
	Empty            bool              `json:"empty"`              // Mapping không có record nào
	Summary          models.Summary    `json:"summary"`            // Số liệu tổng hợp của mapping
	Report           *reference.Report `json:"report"`             // Báo cáo đối chiếu
	ProcessingTimeMs int64             `json:"processing_time_ms"` // Thời gian xử lý (ms)
}

// EmptyResponse kết quả rỗng (200, không phải lỗi)
type EmptyResponse struct {
	SubDistrict string `json:"sub_district"` // Kecamatan
	Empty       bool   `json:"empty"`        // Luôn true
	Message     string `json:"message"`      // Thông báo
}

// ViolationsResponse vi phạm cây hành chính
type ViolationsResponse struct {
	Violations []boundary.TreeViolation `json:"violations"` // Danh sách vi phạm
	Total      int                      `json:"total"`      // Số vi phạm
}

// CacheStatsResponse thống kê cache response của provider
type CacheStatsResponse struct {
	Enabled    bool    `json:"enabled"`     // Cache có bật không
	HitRate    float64 `json:"hit_rate"`    // Tỷ lệ hit
	TotalHits  int64   `json:"total_hits"`  // Tổng hit
	TotalMiss  int64   `json:"total_miss"`  // Tổng miss
	TotalItems int64   `json:"total_items"` // Số payload đang giữ
}

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string `json:"error"`                // Mã lỗi
	Message   string `json:"message"`              // Thông báo lỗi
	Kind      string `json:"kind,omitempty"`       // Loại lỗi chi tiết (fetch/reference)
	Timestamp string `json:"timestamp"`            // Thời gian xảy ra lỗi
	RequestID string `json:"request_id,omitempty"` // ID của request
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`        // Có thành công không
	Message   string      `json:"message"`        // Thông báo
	Data      interface{} `json:"data,omitempty"` // Dữ liệu
	Timestamp string      `json:"timestamp"`      // Thời gian
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`    // Trạng thái sức khỏe
	Timestamp string            `json:"timestamp"` // Thời gian kiểm tra
	Uptime    string            `json:"uptime"`    // Thời gian hoạt động
	Version   string            `json:"version"`   // Phiên bản
	Services  map[string]string `json:"services"`  // Trạng thái các service
}
