package generation

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func assertDistinct(t *testing.T, values []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, v := range values {
		assert.False(t, seen[v], "duplicate %q", v)
		seen[v] = true
	}
}

func TestEnforceUnique(t *testing.T) {
	in := []string{"a", "b", "a", "a", "c", "b"}
	out, changed := EnforceUnique(in)

	assert.Len(t, out, len(in))
	assert.Equal(t, 3, changed)
	assertDistinct(t, out)
	assert.Equal(t, "a", out[0])
	assert.Equal(t, "b", out[1])
	assert.Equal(t, "c", out[4])
	assert.Contains(t, out[2], "a_")
}

func TestEnforceUniqueNoDuplicates(t *testing.T) {
	in := []string{"x", "y", "z"}
	out, changed := EnforceUnique(in)
	assert.Equal(t, in, out)
	assert.Zero(t, changed)
}

func TestEnforceUniqueLarge(t *testing.T) {
	in := make([]string, 2000)
	for i := range in {
		in[i] = "same"
	}
	out, changed := EnforceUnique(in)
	assert.Equal(t, 1999, changed)
	assertDistinct(t, out)
}

func TestEnforceUniqueRespectsMaxLength(t *testing.T) {
	in := []string{"서울특별시", "서울특별시", "서울특별시"}
	out, _ := enforceUnique(in, 8)
	assertDistinct(t, out)
	for _, v := range out {
		assert.LessOrEqual(t, utf8.RuneCountInString(v), 8, v)
	}
}
