package normalizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// expansionRule một pattern viết tắt và dạng đầy đủ của nó
type expansionRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// StreetNormalizer chuẩn hóa tên phố/gang về dạng canonical lowercase.
// Không có state thay đổi sau khi khởi tạo nên dùng chung an toàn giữa các goroutine.
type StreetNormalizer struct {
	rules           []expansionRule
	genericPrefixes map[string]struct{}
	reSpaces        *regexp.Regexp
}

// defaultNormalizer được build một lần từ embedded rules; pipeline mapping và
// validation đều đi qua nó nên cùng input luôn cho cùng output.
var defaultNormalizer = MustNewStreetNormalizer()

// NewStreetNormalizer tạo StreetNormalizer từ embedded rules
func NewStreetNormalizer() (*StreetNormalizer, error) {
	config, err := LoadRulesConfig()
	if err != nil {
		return nil, err
	}
	return NewStreetNormalizerFromRules(config)
}

// MustNewStreetNormalizer giống NewStreetNormalizer nhưng panic khi rules lỗi
func MustNewStreetNormalizer() *StreetNormalizer {
	sn, err := NewStreetNormalizer()
	if err != nil {
		panic(err)
	}
	return sn
}

// NewStreetNormalizerFromRules compile rules thành các regex theo nguyên token
func NewStreetNormalizerFromRules(config *RulesConfig) (*StreetNormalizer, error) {
	sn := &StreetNormalizer{
		genericPrefixes: make(map[string]struct{}, len(config.GenericPrefixes)),
		reSpaces:        regexp.MustCompile(`\s+`),
	}

	// Duyệt theo thứ tự khóa để kết quả compile ổn định
	fullForms := make([]string, 0, len(config.StreetTypes))
	for full := range config.StreetTypes {
		fullForms = append(fullForms, full)
	}
	sort.Strings(fullForms)

	for _, full := range fullForms {
		abbrevs := config.StreetTypes[full]
		if len(abbrevs) == 0 {
			continue
		}
		quoted := make([]string, 0, len(abbrevs))
		for _, a := range abbrevs {
			a = strings.TrimSuffix(strings.TrimSpace(a), ".")
			if a == "" {
				continue
			}
			quoted = append(quoted, regexp.QuoteMeta(a))
		}
		// Dài trước ngắn để "jln" không bị "jl" ăn mất
		sort.Slice(quoted, func(i, j int) bool {
			if len(quoted[i]) != len(quoted[j]) {
				return len(quoted[i]) > len(quoted[j])
			}
			return quoted[i] < quoted[j]
		})
		re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b\.?`)
		if err != nil {
			return nil, fmt.Errorf("lỗi compile pattern cho %q: %w", full, err)
		}
		sn.rules = append(sn.rules, expansionRule{
			pattern:     re,
			replacement: " " + strings.ToLower(full) + " ",
		})
	}

	for _, p := range config.GenericPrefixes {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			sn.genericPrefixes[p] = struct{}{}
		}
	}

	return sn, nil
}

// Normalize trả về tên canonical: ASCII, lowercase, viết tắt đã mở rộng,
// khoảng trắng gọn. Input rỗng trả về chuỗi rỗng.
func (sn *StreetNormalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := FoldASCII(raw)
	s = strings.TrimSpace(s)
	for _, rule := range sn.rules {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	s = sn.reSpaces.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.ToLower(s)
}

// StripGenericPrefix bỏ các token chung (jalan, gang) ở đầu tên đã chuẩn hóa
func (sn *StreetNormalizer) StripGenericPrefix(normalized string) string {
	tokens := strings.Fields(normalized)
	i := 0
	for i < len(tokens) {
		if _, ok := sn.genericPrefixes[tokens[i]]; !ok {
			break
		}
		i++
	}
	return strings.Join(tokens[i:], " ")
}

// NormalizeBatch normalize nhiều tên cùng lúc
func (sn *StreetNormalizer) NormalizeBatch(names []string) []string {
	results := make([]string, len(names))
	for i, name := range names {
		results[i] = sn.Normalize(name)
	}
	return results
}

// Normalize chuẩn hóa tên bằng rules mặc định
func Normalize(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// StripGenericPrefix bỏ token chung đầu tên bằng rules mặc định
func StripGenericPrefix(normalized string) string {
	return defaultNormalizer.StripGenericPrefix(normalized)
}
