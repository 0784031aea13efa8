package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnIgnoresCase(t *testing.T) {
	table := SchemaTable{Name: "users", Columns: []SchemaColumn{{Name: "email"}, {Name: "UserID"}}}

	c, ok := table.Column("Email")
	require.True(t, ok)
	assert.Equal(t, "email", c.Name)

	_, ok = table.Column("userid")
	assert.True(t, ok)

	_, ok = table.Column("mail")
	assert.False(t, ok)
}

func TestForeignKeyForIgnoresCase(t *testing.T) {
	table := SchemaTable{
		Name:        "orders",
		Columns:     []SchemaColumn{{Name: "user_id"}, {Name: "owner", ForeignKeyTable: "users", ForeignKeyColumn: "id"}},
		ForeignKeys: []SchemaForeignKey{{Column: "user_id", RefTable: "users", RefColumn: "id"}},
	}

	fk, ok := table.ForeignKeyFor("USER_ID")
	require.True(t, ok)
	assert.Equal(t, "users", fk.RefTable)

	fk, ok = table.ForeignKeyFor("Owner")
	require.True(t, ok)
	assert.Equal(t, "id", fk.RefColumn)
}
