package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapterRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.Connect(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db")))
	defer a.Close()
	require.NoError(t, a.Ping(ctx))

	_, err := a.db.ExecContext(ctx, `CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)

	n, err := a.InsertRows(ctx, "teams", []string{"id", "name"}, [][]interface{}{
		{"1", "red"}, {"2", "blue"}, {"3", nil},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	unique, err := a.FetchUniqueSamples(ctx, "teams", "name", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"red", "blue"}, unique)

	random, err := a.FetchRandomSamples(ctx, "teams", "id", 2)
	require.NoError(t, err)
	assert.Len(t, random, 2)
	assert.Subset(t, []string{"1", "2", "3"}, random)
}

func TestAdapterRejectsBadIdentifiers(t *testing.T) {
	a := New()
	_, err := a.FetchRandomSamples(context.Background(), "teams; DROP TABLE x", "id", 1)
	assert.Error(t, err)
}

func TestQuoting(t *testing.T) {
	a := New()
	assert.Equal(t, `"we""ird"`, a.QuoteIdentifier(`we"ird`))
	assert.Equal(t, `'it''s'`, a.QuoteLiteral("it's"))
}
