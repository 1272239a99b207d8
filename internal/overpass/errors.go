package overpass

import (
	"errors"
	"fmt"
)

// ErrFetch lấy dữ liệu đường từ Overpass thất bại
var ErrFetch = errors.New("street fetch failed")

// FetchKind phân loại lỗi fetch
type FetchKind string

const (
	KindNetwork     FetchKind = "network"
	KindTimeout     FetchKind = "timeout"
	KindStatus      FetchKind = "status"
	KindDecode      FetchKind = "decode"
	KindRemote      FetchKind = "remote"
	KindUnknownArea FetchKind = "unknown_area"
)

// FetchError lỗi cấp batch; caller có thể thử lại
type FetchError struct {
	Kind        FetchKind
	SubDistrict string
	StatusCode  int
	Err         error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch streets for %q: %s", e.SubDistrict, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }
