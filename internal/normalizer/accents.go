package normalizer

import (
	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// FoldASCII chuẩn hóa Unicode (NFKC) rồi chuyển về ASCII.
// Tên trong OSM và Google Sheets có thể chứa dấu nháy cong, chữ có dấu hoặc
// ký tự full-width; sau bước này cả hai nguồn dùng cùng một bảng chữ.
func FoldASCII(s string) string {
	return unidecode.Unidecode(norm.NFKC.String(s))
}
