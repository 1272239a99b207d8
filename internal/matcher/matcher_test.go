package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	testCases := []struct {
		name     string
		a        string
		b        string
		expected Kind
	}{
		{"Giống hệt", "jalan merdeka", "jalan merdeka", KindExact},
		{"Sai một ký tự", "jalan merdeka", "jalan merdika", KindNear},
		{"Khác hẳn", "jalan sudirman", "jalan pejanggik", KindNone},
		{"Chứa nhau sau khi bỏ tiền tố", "gang mawar", "jalan mawar indah", KindNear},
		{"Cùng tên khác loại đường", "gang mawar", "jalan mawar", KindNone},
		{"Chuỗi con quá ngắn", "jalan ab", "jalan abcdefgh", KindNone},
		{"Chỉ còn tiền tố", "jalan", "jalan raya", KindNone},
		{"Đúng ngưỡng không tính", "abcde", "abcdx", KindNone},
		{"Rỗng", "", "jalan merdeka", KindNone},
		{"Cả hai rỗng", "", "", KindNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, m.Classify(tc.a, tc.b))
		})
	}
}

func TestClassify_Symmetric(t *testing.T) {
	m := NewMatcher(DefaultConfig())
	names := []string{
		"jalan merdeka", "jalan merdika", "gang mawar", "jalan mawar indah",
		"jalan ab", "jalan abcdefgh", "jalan", "lorong kenanga", "kenanga",
		"gang 3 dusun karang baru", "karang baru", "",
	}

	for _, a := range names {
		for _, b := range names {
			assert.Equal(t, m.Classify(a, b), m.Classify(b, a), "%q vs %q", a, b)
		}
	}
}

func TestClassify_ConfigurableRatio(t *testing.T) {
	strict := NewMatcher(Config{NearRatio: 0.05, MinSubstringLen: 3})
	assert.Equal(t, KindNone, strict.Classify("jalan merdeka", "jalan merdika"))

	loose := NewMatcher(Config{NearRatio: 0.5})
	assert.Equal(t, KindNear, loose.Classify("jalan sudirman", "jalan sudarmono"))
	assert.Equal(t, 3, loose.Config().MinSubstringLen)
}

func TestClassify_MinSubstringLen(t *testing.T) {
	def := NewMatcher(DefaultConfig())
	assert.Equal(t, KindNone, def.Classify("gang 1", "jalan 1 baru"))

	noFloor := NewMatcher(Config{NearRatio: 0.2, MinSubstringLen: 0})
	assert.Equal(t, 0, noFloor.Config().MinSubstringLen)
	assert.Equal(t, KindNear, noFloor.Classify("gang 1", "jalan 1 baru"))
	assert.Equal(t, KindNear, noFloor.Classify("jalan 1 baru", "gang 1"))
	assert.Equal(t, KindNone, noFloor.Classify("gang mawar", "jalan mawar"))

	negative := NewMatcher(Config{NearRatio: 0.2, MinSubstringLen: -1})
	assert.Equal(t, 3, negative.Config().MinSubstringLen)
}

func TestEditRatio(t *testing.T) {
	assert.InDelta(t, 0.0, EditRatio("", ""), 1e-9)
	assert.InDelta(t, 1.0/13.0, EditRatio("jalan merdeka", "jalan merdika"), 1e-9)
	assert.InDelta(t, EditRatio("abc", "abd"), EditRatio("abd", "abc"), 1e-9)
}

func TestBestMatch(t *testing.T) {
	m := NewMatcher(DefaultConfig())

	refs := []string{"jalan sudirman", "jalan merdeka raya", "jalan merdika"}
	c := m.BestMatch("jalan merdeka", refs)
	assert.Equal(t, KindNear, c.Kind)
	assert.Equal(t, "jalan merdika", c.Name)
	assert.Equal(t, 1, c.Distance)

	c = m.BestMatch("jalan merdeka", append(refs, "jalan merdeka"))
	assert.Equal(t, KindExact, c.Kind)
	assert.Equal(t, "jalan merdeka", c.Name)

	c = m.BestMatch("gang kenari", refs)
	assert.Equal(t, KindNone, c.Kind)
	assert.Empty(t, c.Name)

	c = m.BestMatch("gang kenari", nil)
	assert.Equal(t, KindNone, c.Kind)
}

func TestBetterOrdering(t *testing.T) {
	a := Candidate{Name: "a", Similarity: 0.9, Distance: 2}
	b := Candidate{Name: "b", Similarity: 0.9, Distance: 2}
	c := Candidate{Name: "c", Similarity: 0.9, Distance: 1}
	d := Candidate{Name: "d", Similarity: 0.95, Distance: 5}

	assert.True(t, better(a, b))
	assert.False(t, better(b, a))
	assert.True(t, better(c, a))
	assert.True(t, better(d, c))
}
