package faker

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestResolveLocale(t *testing.T) {
	assert.Equal(t, language.Korean, ResolveLocale("ko-KR"))
	assert.Equal(t, language.English, ResolveLocale("en-US"))
	assert.Equal(t, language.Korean, ResolveLocale(""))
	assert.Equal(t, language.Korean, ResolveLocale("not a tag!"))
}

func TestEveryCategoryGenerates(t *testing.T) {
	for _, locale := range []string{"ko", "en"} {
		g := NewWithSeed(locale, 1)
		for _, name := range Categories() {
			v, err := g.Generate(name, nil)
			require.NoError(t, err, name)
			assert.NotEmpty(t, v, "%s/%s", locale, name)
		}
	}
}

func TestUnknownCategory(t *testing.T) {
	_, err := New("en").Generate("spaceship", nil)
	assert.Error(t, err)
}

func TestNumericCategoriesHonorRange(t *testing.T) {
	g := NewWithSeed("en", 7)
	r := &Range{Min: 20, Max: 60}
	for _, name := range []string{"integer", "age", "decimal", "price", "quantity", "rating"} {
		for i := 0; i < 500; i++ {
			v, err := g.Generate(name, r)
			require.NoError(t, err)
			f, err := strconv.ParseFloat(v, 64)
			require.NoError(t, err, v)
			assert.GreaterOrEqual(t, f, 20.0, name)
			assert.LessOrEqual(t, f, 60.0, name)
		}
	}
}

func TestIntegerRangeExtremes(t *testing.T) {
	g := NewWithSeed("en", 3)
	r := &Range{Min: -9223372036854775808, Max: 9223372036854775807}
	for i := 0; i < 100; i++ {
		v, err := g.Generate("integer", r)
		require.NoError(t, err)
		_, err = strconv.ParseInt(v, 10, 64)
		assert.NoError(t, err, v)
	}

	v, err := g.Generate("integer", &Range{Min: 5, Max: 5})
	require.NoError(t, err)
	assert.Equal(t, "5", v)
}

func TestEmailLooksPlausible(t *testing.T) {
	g := NewWithSeed("ko", 11)
	for i := 0; i < 20; i++ {
		v, _ := g.Generate("email", nil)
		at := strings.Index(v, "@")
		require.Greater(t, at, 0, v)
		assert.Contains(t, v[at:], ".")
	}
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "서울", Truncate("서울특별시", 2))
	assert.True(t, utf8.ValidString(Truncate("서울특별시", 3)))
	assert.Equal(t, "abc", Truncate("abc", 10))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestDetect(t *testing.T) {
	cases := map[[2]string]string{
		{"email", "VARCHAR(100)"}:     "email",
		{"user_email", "TEXT"}:        "email",
		{"first_name", "VARCHAR(20)"}: "first_name",
		{"name", "VARCHAR(50)"}:       "name",
		{"age", "INT"}:                "age",
		{"total_amount", "DECIMAL"}:   "price",
		{"created_at", "TIMESTAMP"}:   "datetime",
		{"birthday", "DATE"}:          "date",
		{"external_id", "UUID"}:       "uuid",
		{"flag", "BOOLEAN"}:           "boolean",
		{"code", "CHAR(4)"}:           "word",
	}
	for in, want := range cases {
		assert.Equal(t, want, Detect(in[0], in[1]), in[0])
	}
}

func TestExamples(t *testing.T) {
	g := NewWithSeed("en", 5)
	assert.Len(t, g.Examples("city", 3, nil), 3)
	assert.Nil(t, g.Examples("nope", 3, nil))
}
