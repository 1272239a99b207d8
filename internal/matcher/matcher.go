package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"

	"github.com/street-mapper/internal/normalizer"
)

// Kind mức độ khớp giữa hai tên đã chuẩn hóa
type Kind string

const (
	KindExact Kind = "exact"
	KindNear  Kind = "near"
	KindNone  Kind = "none"
)

// Config ngưỡng so khớp gần đúng
type Config struct {
	// NearRatio edit distance / độ dài lớn hơn phải nhỏ hơn giá trị này
	NearRatio float64
	// MinSubstringLen độ dài tối thiểu của chuỗi ngắn hơn khi xét chứa nhau; 0 là không giới hạn
	MinSubstringLen int
}

// DefaultConfig ngưỡng mặc định
func DefaultConfig() Config {
	return Config{NearRatio: 0.2, MinSubstringLen: 3}
}

// Matcher so khớp tên jalan/gang. Không có state, dùng chung được.
type Matcher struct {
	cfg Config
}

// NewMatcher tạo Matcher; giá trị không hợp lệ lấy mặc định
func NewMatcher(cfg Config) *Matcher {
	def := DefaultConfig()
	if cfg.NearRatio <= 0 || cfg.NearRatio > 1 {
		cfg.NearRatio = def.NearRatio
	}
	if cfg.MinSubstringLen < 0 {
		cfg.MinSubstringLen = def.MinSubstringLen
	}
	return &Matcher{cfg: cfg}
}

// Config cấu hình đang dùng
func (m *Matcher) Config() Config {
	return m.cfg
}

// Classify phân loại hai tên đã chuẩn hóa. Đối xứng: Classify(a, b) == Classify(b, a).
func (m *Matcher) Classify(a, b string) Kind {
	if a == "" || b == "" {
		return KindNone
	}
	if a == b {
		return KindExact
	}
	if EditRatio(a, b) < m.cfg.NearRatio {
		return KindNear
	}
	if m.contains(a, b) {
		return KindNear
	}
	return KindNone
}

// contains một tên (đã bỏ jalan/gang đầu) là chuỗi con thực sự của tên kia
func (m *Matcher) contains(a, b string) bool {
	sa := normalizer.StripGenericPrefix(a)
	sb := normalizer.StripGenericPrefix(b)
	if sa == "" || sb == "" {
		return false
	}
	shorter, longer := sa, sb
	if utf8.RuneCountInString(shorter) > utf8.RuneCountInString(longer) {
		shorter, longer = longer, shorter
	}
	n := utf8.RuneCountInString(shorter)
	if n == utf8.RuneCountInString(longer) || n < m.cfg.MinSubstringLen {
		return false
	}
	return strings.Contains(longer, shorter)
}

// EditRatio levenshtein (theo rune) chia cho độ dài lớn hơn
func EditRatio(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(maxLen)
}

// Candidate ứng viên tốt nhất trong danh sách tham chiếu
type Candidate struct {
	Name       string  `json:"name"`
	Kind       Kind    `json:"kind"`
	Distance   int     `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// BestMatch tìm ứng viên tốt nhất cho name trong refs (đều đã chuẩn hóa).
// Exact thắng tuyệt đối; giữa các near xếp theo Jaro-Winkler giảm dần,
// rồi edit distance tăng dần, rồi tên.
func (m *Matcher) BestMatch(name string, refs []string) Candidate {
	best := Candidate{Kind: KindNone}
	found := false

	for _, ref := range refs {
		kind := m.Classify(name, ref)
		if kind == KindNone {
			continue
		}
		c := Candidate{
			Name:       ref,
			Kind:       kind,
			Distance:   levenshtein.ComputeDistance(name, ref),
			Similarity: smetrics.JaroWinkler(name, ref, 0.7, 4),
		}
		if kind == KindExact {
			return c
		}
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	return best
}

func better(a, b Candidate) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Name < b.Name
}
