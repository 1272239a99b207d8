package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_KnownCases(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Jl with dot", input: "Jl. Merdeka", expected: "jalan merdeka"},
		{name: "Gg without dot", input: "Gg Mawar", expected: "gang mawar"},
		{name: "Jln padded", input: "  Jln.   Sudirman ", expected: "jalan sudirman"},
		{name: "Empty", input: "", expected: ""},
		{name: "Whitespace only", input: "   \t ", expected: ""},
		{name: "No space after dot", input: "Jl.Pejanggik", expected: "jalan pejanggik"},
		{name: "Upper case abbreviation", input: "GG. SAWO", expected: "gang sawo"},
		{name: "Full word kept", input: "Jalan Langko", expected: "jalan langko"},
		{name: "Embedded token", input: "Komplek Gg Kenari", expected: "komplek gang kenari"},
		{name: "Substring not expanded", input: "Jlnx Raya", expected: "jlnx raya"},
		{name: "Prefix of word not expanded", input: "Gganesha", expected: "gganesha"},
		{name: "Diacritics folded", input: "Jl. Saleh Sungkar Ampénan", expected: "jalan saleh sungkar ampenan"},
		{name: "Tabs and newlines", input: "Jl.\tAA\nGde  Ngurah", expected: "jalan aa gde ngurah"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Jl. Merdeka",
		"Gg Mawar",
		"  Jln.   Sudirman ",
		"Jl..",
		"GG. 3 Dusun Karang Baru",
		"Jalan Jl. Jln Gg",
		"",
		"Ｊｌ． Ｆｕｌｌ Ｗｉｄｔｈ",
		"Jl. Dr. Soedjono",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_SameResultFromInstanceAndPackage(t *testing.T) {
	sn, err := NewStreetNormalizer()
	require.NoError(t, err)

	for _, in := range []string{"Jl. Merdeka", "gg mawar", "Jln Sudirman"} {
		assert.Equal(t, Normalize(in), sn.Normalize(in))
	}
}

func TestStripGenericPrefix(t *testing.T) {
	assert.Equal(t, "merdeka", StripGenericPrefix("jalan merdeka"))
	assert.Equal(t, "mawar", StripGenericPrefix("gang mawar"))
	assert.Equal(t, "mawar", StripGenericPrefix("jalan gang mawar"))
	assert.Equal(t, "raya jalan", StripGenericPrefix("raya jalan"))
	assert.Equal(t, "", StripGenericPrefix("jalan"))
	assert.Equal(t, "", StripGenericPrefix(""))
}

func TestParseRulesConfig(t *testing.T) {
	config, err := ParseRulesConfig([]byte("street_types:\n  lorong: [lr, lrg.]\ngeneric_prefixes: [lorong]\n"))
	require.NoError(t, err)

	sn, err := NewStreetNormalizerFromRules(config)
	require.NoError(t, err)

	assert.Equal(t, "lorong kenanga", sn.Normalize("Lrg. Kenanga"))
	assert.Equal(t, "lorong kenanga", sn.Normalize("LR Kenanga"))
	assert.Equal(t, "kenanga", sn.StripGenericPrefix("lorong kenanga"))

	_, err = ParseRulesConfig([]byte("generic_prefixes: [jalan]\n"))
	assert.Error(t, err)
}

func TestNormalizeBatch(t *testing.T) {
	sn := MustNewStreetNormalizer()
	out := sn.NormalizeBatch([]string{"Jl. A", "Gg B", ""})
	assert.Equal(t, []string{"jalan a", "gang b", ""}, out)
}
