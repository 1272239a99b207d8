package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/street-mapper/app/models"
	"github.com/street-mapper/internal/boundary"
	"github.com/street-mapper/internal/export"
	"github.com/street-mapper/internal/mapper"
	"github.com/street-mapper/internal/reference"
)

var (
	// ErrUnknownSubDistrict kecamatan không có trong dữ liệu ranh giới
	ErrUnknownSubDistrict = errors.New("kecamatan không tồn tại")
	// ErrUnsupportedFormat định dạng xuất không hỗ trợ
	ErrUnsupportedFormat = errors.New("định dạng xuất không hỗ trợ")
)

// Định dạng file xuất
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// MapOutcome kết quả mapping kèm số liệu tổng hợp
type MapOutcome struct {
	Result  *mapper.Result
	Summary models.Summary
}

// ExportFile file đã render, sẵn sàng trả về client
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Records     int
}

// ValidationOutcome kết quả mapping và báo cáo đối chiếu
type ValidationOutcome struct {
	Result *mapper.Result
	Report *reference.Report
}

// StreetService điều phối index ranh giới, mapper và validator cho tầng HTTP
type StreetService struct {
	index     *boundary.Index
	mapper    *mapper.Mapper
	validator *reference.Validator
	logger    *zap.Logger
	startTime time.Time
}

// NewStreetService tạo mới StreetService
func NewStreetService(index *boundary.Index, m *mapper.Mapper, validator *reference.Validator, logger *zap.Logger) *StreetService {
	return &StreetService{
		index:     index,
		mapper:    m,
		validator: validator,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetStartTime thời điểm service khởi động
func (s *StreetService) GetStartTime() time.Time {
	return s.startTime
}

// ListSubDistricts danh sách kecamatan cho bộ chọn
func (s *StreetService) ListSubDistricts() []string {
	return s.index.ListUnits(boundary.LevelSubDistrict)
}

// ListUnits các đơn vị ở level thuộc kecamatan
func (s *StreetService) ListUnits(subDistrict string, level boundary.Level) ([]boundary.Unit, error) {
	name, err := s.canonical(subDistrict)
	if err != nil {
		return nil, err
	}
	return s.index.Units(level, name), nil
}

// Violations vi phạm cây hành chính phát hiện lúc load
func (s *StreetService) Violations() []boundary.TreeViolation {
	return s.index.Violations()
}

func (s *StreetService) canonical(subDistrict string) (string, error) {
	name, ok := s.index.SubDistrict(strings.TrimSpace(subDistrict))
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSubDistrict, subDistrict)
	}
	return name, nil
}

// MapStreets fetch và gán jalan/gang của kecamatan vào SLS.
// Mỗi lần gọi đều fetch mới, không giữ kết quả giữa các request.
func (s *StreetService) MapStreets(ctx context.Context, subDistrict string) (*MapOutcome, error) {
	name, err := s.canonical(subDistrict)
	if err != nil {
		return nil, err
	}

	result, err := s.mapper.MapStreetsToAdmin(ctx, name)
	if err != nil {
		s.logger.Error("Lỗi mapping jalan/gang", zap.String("sub_district", name), zap.Error(err))
		return nil, err
	}

	return &MapOutcome{
		Result:  result,
		Summary: models.Summarize(result.Records),
	}, nil
}

// Export mapping rồi render ra xlsx hoặc csv. Định dạng rỗng = xlsx.
func (s *StreetService) Export(ctx context.Context, subDistrict, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	outcome, err := s.MapStreets(ctx, subDistrict)
	if err != nil {
		return nil, err
	}
	records := outcome.Result.Records

	var buf bytes.Buffer
	file := &ExportFile{
		FileName: export.FileName(outcome.Result.SubDistrict, format),
		Records:  len(records),
	}

	switch format {
	case FormatCSV:
		file.ContentType = "text/csv; charset=utf-8"
		err = export.WriteCSV(&buf, records)
	default:
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteXLSX(&buf, records)
	}
	if err != nil {
		return nil, fmt.Errorf("lỗi render file %s: %w", format, err)
	}

	file.Data = buf.Bytes()
	return file, nil
}

// Validate mapping kecamatan rồi đối chiếu với sheet tham chiếu
func (s *StreetService) Validate(ctx context.Context, subDistrict, referenceURL string) (*ValidationOutcome, error) {
	// kiểm tra URL trước để không tốn một lần gọi Overpass
	if _, err := reference.ExportURL(referenceURL); err != nil {
		return nil, err
	}

	outcome, err := s.MapStreets(ctx, subDistrict)
	if err != nil {
		return nil, err
	}

	report, err := s.validator.Validate(ctx, outcome.Result.Records, referenceURL)
	if err != nil {
		return nil, err
	}

	return &ValidationOutcome{
		Result: outcome.Result,
		Report: report,
	}, nil
}
