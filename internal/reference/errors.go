package reference

import (
	"errors"
	"fmt"
)

// ErrReferenceFetch không lấy được sheet tham chiếu
var ErrReferenceFetch = errors.New("reference fetch failed")

// FetchKind phân loại lỗi lấy sheet
type FetchKind string

const (
	KindInvalidURL  FetchKind = "invalid_url"
	KindUnreachable FetchKind = "unreachable"
	KindNotPublic   FetchKind = "not_public"
	KindMalformed   FetchKind = "malformed"
)

// ReferenceFetchError lỗi lấy hoặc parse sheet tham chiếu
type ReferenceFetchError struct {
	Kind       FetchKind
	URL        string
	StatusCode int
	Err        error
}

func (e *ReferenceFetchError) Error() string {
	msg := fmt.Sprintf("reference %s: %s", e.URL, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ReferenceFetchError) Unwrap() error { return e.Err }

func (e *ReferenceFetchError) Is(target error) bool { return target == ErrReferenceFetch }

// Message thông báo cho người dùng theo loại lỗi
func (e *ReferenceFetchError) Message() string {
	switch e.Kind {
	case KindInvalidURL:
		return "Link không phải Google Sheets hoặc CSV hợp lệ"
	case KindNotPublic:
		return "Sheet chưa public, hãy bật 'Anyone with the link can view'"
	case KindMalformed:
		return "Nội dung sheet không đọc được dưới dạng bảng CSV"
	default:
		return "Không kết nối được tới sheet tham chiếu"
	}
}
