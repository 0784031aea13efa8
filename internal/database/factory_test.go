package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdapter(t *testing.T) {
	for _, provider := range []string{"postgres", "postgresql", "mysql", "sqlite", "sqlite3"} {
		adapter, err := NewAdapter(provider)
		require.NoError(t, err, provider)
		assert.NotNil(t, adapter)
	}

	_, err := NewAdapter("oracle")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestQuoteLiteralPerDialect(t *testing.T) {
	pg, _ := NewAdapter("postgres")
	assert.Equal(t, `"user"`, pg.QuoteIdentifier("user"))
	assert.Equal(t, `'o''brien'`, pg.QuoteLiteral("o'brien"))

	lite, _ := NewAdapter("sqlite")
	assert.Equal(t, `"user"`, lite.QuoteIdentifier("user"))
}
