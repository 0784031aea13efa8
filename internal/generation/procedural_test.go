package generation

import (
	"context"
	"io"
	"regexp"
	"strconv"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[a-z]+$`)

func TestProceduralEmails(t *testing.T) {
	gen := &ProceduralGenerator{Column: "email", Meta: ProceduralMeta{Category: "email"}}
	values := collectStrings(t, gen.Generate(context.Background(), 5, ColumnConstraint{MaxLength: 120}))

	require.Len(t, values, 5)
	for _, v := range values {
		assert.Regexp(t, emailRegex, v)
		assert.LessOrEqual(t, utf8.RuneCountInString(v), 120)
	}
}

func TestProceduralDetectsCategoryFromColumn(t *testing.T) {
	gen := &ProceduralGenerator{Column: "contact_email", Locale: "en"}
	values := collectStrings(t, gen.Generate(context.Background(), 3, ColumnConstraint{SQLType: "VARCHAR(255)"}))
	for _, v := range values {
		assert.Regexp(t, emailRegex, v)
	}
}

func TestProceduralNumericRange(t *testing.T) {
	gen := &ProceduralGenerator{Column: "age", Meta: ProceduralMeta{Category: "integer"}, Seed: 42}
	c := ColumnConstraint{NumericRange: &NumericRange{Min: 20, Max: 60}}
	values := collectStrings(t, gen.Generate(context.Background(), 1000, c))

	require.Len(t, values, 1000)
	for _, v := range values {
		n, err := strconv.Atoi(v)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 20)
		assert.LessOrEqual(t, n, 60)
	}
}

func TestProceduralTruncatesToMaxLength(t *testing.T) {
	gen := &ProceduralGenerator{Column: "bio", Meta: ProceduralMeta{Category: "paragraph", Locale: "ko"}}
	values := collectStrings(t, gen.Generate(context.Background(), 50, ColumnConstraint{MaxLength: 7}))
	for _, v := range values {
		assert.LessOrEqual(t, utf8.RuneCountInString(v), 7)
		assert.True(t, utf8.ValidString(v))
	}
}

func TestProceduralUniqueForcesAfterRetries(t *testing.T) {
	log := &captureLogger{}
	gen := &ProceduralGenerator{Column: "level", Meta: ProceduralMeta{Category: "word", EnsureUnique: true}, Logger: log}
	c := ColumnConstraint{EnumValues: []string{"low", "high"}}

	values := collectStrings(t, gen.Generate(context.Background(), 5, c))
	require.Len(t, values, 5)
	assertDistinct(t, values)
	assert.True(t, log.contains("forcing unique"))
}

func TestProceduralUniqueIntegerStaysInRange(t *testing.T) {
	gen := &ProceduralGenerator{Column: "seat", Meta: ProceduralMeta{Category: "integer"}}
	c := ColumnConstraint{Unique: true, NumericRange: &NumericRange{Min: 1, Max: 10}}

	values := collectStrings(t, gen.Generate(context.Background(), 10, c))
	assertDistinct(t, values)
	for _, v := range values {
		n, err := strconv.Atoi(v)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 10)
	}
}

func TestProceduralUnknownCategory(t *testing.T) {
	gen := &ProceduralGenerator{Column: "x", Meta: ProceduralMeta{Category: "starship"}}
	_, err := gen.Generate(context.Background(), 1, ColumnConstraint{}).Next(context.Background())
	assert.Error(t, err)
}

func TestProceduralStreamEndsAfterCount(t *testing.T) {
	ctx := context.Background()
	s := (&ProceduralGenerator{Column: "name"}).Generate(ctx, 2, ColumnConstraint{})
	_, err := s.Next(ctx)
	require.NoError(t, err)
	_, err = s.Next(ctx)
	require.NoError(t, err)
	_, err = s.Next(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestFixedGenerator(t *testing.T) {
	ctx := context.Background()
	values, err := Collect(ctx, (&FixedGenerator{Meta: FixedMeta{Value: strPtr("Y")}}).Generate(ctx, 3, ColumnConstraint{}))
	require.NoError(t, err)
	require.Len(t, values, 3)
	for _, v := range values {
		assert.Equal(t, "Y", v.String)
	}

	values, err = Collect(ctx, (&FixedGenerator{}).Generate(ctx, 2, ColumnConstraint{}))
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.False(t, values[0].Valid)
}
