package projectdump

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalID_Format(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		element  string
		library  string
		expected string
	}{
		{"interaction", KindInteraction, "Run", "Calc", "itba-IA-06afe49e53"},
		{"normalized keyword name", KindInteraction, "My Keyword", "Calc", "itba-IA-136b481769"},
		{"group subdivision", KindSubdivision, "RF", "RF", "itba-SD-708167e98d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExternalID(tt.kind, tt.element, tt.library, "itba"))
		})
	}
}

func TestExternalID_NormalizationVariants(t *testing.T) {
	a := ExternalID(KindInteraction, "My Keyword", "Calc", "itba")
	b := ExternalID(KindInteraction, "my_keyword", "Calc", "itba")
	c := ExternalID(KindInteraction, "MyKeyword", "Calc", "itba")

	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
}

func TestExternalID_Inputs(t *testing.T) {
	base := ExternalID(KindDataType, "Mode", "Calc", "itba")

	assert.Regexp(t, regexp.MustCompile(`^itba-DT-[0-9a-f]{10}$`), base)
	assert.Equal(t, base, ExternalID(KindDataType, "Mode", "Calc", "itba"), "must be deterministic")
	assert.NotEqual(t, base, ExternalID(KindDataType, "Mode", "Other", "itba"), "library is part of the digest")
	assert.NotEqual(t, base, ExternalID(KindDataType, "Mode", "Calc", "repo2"))
	assert.NotEqual(t, base, ExternalID(KindInteraction, "Mode", "Calc", "itba"))
}

func TestKind_Abbreviation(t *testing.T) {
	assert.Equal(t, "SD", KindSubdivision.Abbreviation())
	assert.Equal(t, "DT", KindDataType.Abbreviation())
	assert.Equal(t, "IA", KindInteraction.Abbreviation())
	assert.Equal(t, "CD", KindCondition.Abbreviation())
}
