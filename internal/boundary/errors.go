package boundary

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	// ErrLoad nguồn ranh giới hỏng, không thể khởi tạo
	ErrLoad = errors.New("boundary load failed")
	// ErrUnresolvedPoint điểm không thuộc polygon nào và không có centroid trong bán kính
	ErrUnresolvedPoint = errors.New("point not resolved to any boundary unit")
)

// LoadError lỗi khi đọc nguồn ranh giới. Feature = -1 khi lỗi ở cấp toàn file.
type LoadError struct {
	Source  string
	Feature int
	Reason  string
	Err     error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load boundary %s", e.Source)
	if e.Feature >= 0 {
		msg += fmt.Sprintf(" (feature %d)", e.Feature)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// UnresolvedPointError điểm nằm ngoài mọi SLS của kecamatan và ngoài bán kính fallback.
// NearestMeters = -1 khi không có ứng viên nào.
type UnresolvedPointError struct {
	Point         orb.Point
	SubDistrict   string
	NearestMeters float64
	RadiusMeters  float64
}

func (e *UnresolvedPointError) Error() string {
	if e.NearestMeters < 0 {
		return fmt.Sprintf("point (%.6f, %.6f) unresolved: no sub-unit under %q",
			e.Point.Lat(), e.Point.Lon(), e.SubDistrict)
	}
	return fmt.Sprintf("point (%.6f, %.6f) unresolved: nearest centroid %.1fm > radius %.1fm",
		e.Point.Lat(), e.Point.Lon(), e.NearestMeters, e.RadiusMeters)
}

func (e *UnresolvedPointError) Is(target error) bool { return target == ErrUnresolvedPoint }
