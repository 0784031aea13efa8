package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprint(i + 1)
	}
	return ids
}

func TestReferenceUniqueShortfall(t *testing.T) {
	log := &captureLogger{}
	sampler := &fakeSampler{values: userIDs(30)}
	gen := &ReferenceGenerator{
		Column: "user_id",
		Meta:   ReferenceMeta{Table: "users", Column: "id", EnsureUnique: true},
		Source: sampler.source(),
		Logger: log,
	}

	stream := gen.Generate(context.Background(), 100, ColumnConstraint{})
	var got []string
	for {
		v, err := stream.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, v.String)
	}

	assert.Len(t, got, 30)
	assertDistinct(t, got)
	assert.True(t, log.contains("has only 30 distinct values"))
	assert.Equal(t, []string{"unique users.id 100"}, sampler.calls)
	assert.Equal(t, 1, sampler.opened)
	assert.Equal(t, 1, sampler.closed)
}

func TestReferenceRepeatCycles(t *testing.T) {
	sampler := &fakeSampler{values: []string{"a", "b", "c"}}
	gen := &ReferenceGenerator{Column: "user_id", Source: sampler.source()}
	c := ColumnConstraint{ReferencedTable: "users", ReferencedColumn: "id"}

	values := collectStrings(t, gen.Generate(context.Background(), 7, c))
	assert.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a"}, values)
	assert.Equal(t, []string{"random users.id 7"}, sampler.calls)
}

func TestReferenceSampleSizeCap(t *testing.T) {
	sampler := &fakeSampler{values: userIDs(50)}
	gen := &ReferenceGenerator{Column: "user_id", Meta: ReferenceMeta{Table: "users", Column: "id"}, Source: sampler.source(), SampleSize: 10}

	values := collectStrings(t, gen.Generate(context.Background(), 25, ColumnConstraint{}))
	assert.Len(t, values, 25)
	assert.Equal(t, []string{"random users.id 10"}, sampler.calls)
	assert.Equal(t, values[0], values[10])
}

func TestReferenceEmptyTableIsNull(t *testing.T) {
	log := &captureLogger{}
	sampler := &fakeSampler{}
	gen := &ReferenceGenerator{Column: "user_id", Meta: ReferenceMeta{Table: "users", Column: "id"}, Source: sampler.source(), Logger: log}

	values, err := Collect(context.Background(), gen.Generate(context.Background(), 3, ColumnConstraint{}))
	require.NoError(t, err)
	require.Len(t, values, 3)
	for _, v := range values {
		assert.False(t, v.Valid)
	}
	assert.True(t, log.contains("is empty"))
}

func TestReferenceNeedsTarget(t *testing.T) {
	sampler := &fakeSampler{}
	gen := &ReferenceGenerator{Column: "user_id", Source: sampler.source()}
	_, err := gen.Generate(context.Background(), 1, ColumnConstraint{}).Next(context.Background())
	assert.Error(t, err)

	gen = &ReferenceGenerator{Column: "user_id", Meta: ReferenceMeta{Table: "users", Column: "id"}}
	_, err = gen.Generate(context.Background(), 1, ColumnConstraint{}).Next(context.Background())
	assert.Error(t, err)
}

func TestReferenceOpenFailure(t *testing.T) {
	gen := &ReferenceGenerator{
		Column: "user_id",
		Meta:   ReferenceMeta{Table: "users", Column: "id"},
		Source: func(ctx context.Context) (Sampler, error) { return nil, errors.New("refused") },
	}
	_, err := gen.Generate(context.Background(), 1, ColumnConstraint{}).Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}
