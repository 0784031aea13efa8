package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopSchema = `
-- customers and their orders
CREATE TYPE order_status AS ENUM ('pending', 'paid', 'shipped');

CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	email VARCHAR(120) NOT NULL UNIQUE,
	name CHARACTER VARYING(50),
	age INT CHECK (age BETWEEN 20 AND 60),
	check_in DATE,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE TABLE orders (
	id BIGINT NOT NULL,
	user_id INTEGER NOT NULL,
	status order_status NOT NULL,
	amount DECIMAL(10, 2) CHECK (amount >= 0),
	quantity SMALLINT UNSIGNED,
	CONSTRAINT pk_orders PRIMARY KEY (id),
	CONSTRAINT fk_user FOREIGN KEY (user_id) REFERENCES users(id),
	CHECK (quantity <= 500)
);
`

func TestParseTablesAndColumns(t *testing.T) {
	tables, err := NewParser().Parse(shopSchema)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	users := tables[0]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, "id", users.PrimaryKey)
	require.Len(t, users.Columns, 6)

	id, _ := users.Column("id")
	assert.True(t, id.IsAutoIncrement)
	assert.True(t, id.IsPrimary)
	assert.False(t, id.Nullable)

	email, _ := users.Column("email")
	assert.Equal(t, "VARCHAR(120)", email.Type)
	assert.Equal(t, 120, email.Length)
	assert.True(t, email.IsUnique)
	assert.False(t, email.Nullable)

	name, _ := users.Column("name")
	assert.Equal(t, 50, name.Length)
	assert.True(t, name.Nullable)

	age, _ := users.Column("age")
	require.NotNil(t, age.Min)
	require.NotNil(t, age.Max)
	assert.Equal(t, 20.0, *age.Min)
	assert.Equal(t, 60.0, *age.Max)

	checkIn, ok := users.Column("check_in")
	require.True(t, ok, "a column named check_in is not a table constraint")
	assert.Equal(t, "DATE", checkIn.Type)

	created, _ := users.Column("created_at")
	assert.Equal(t, "TIMESTAMP WITH TIME ZONE", created.Type)
	assert.Equal(t, "NOW()", created.Default)
}

func TestParseConstraints(t *testing.T) {
	tables, err := NewParser().Parse(shopSchema)
	require.NoError(t, err)
	orders := tables[1]

	assert.Equal(t, "id", orders.PrimaryKey)

	fk, ok := orders.ForeignKeyFor("user_id")
	require.True(t, ok)
	assert.Equal(t, "users", fk.RefTable)
	assert.Equal(t, "id", fk.RefColumn)

	status, _ := orders.Column("status")
	assert.Equal(t, []string{"pending", "paid", "shipped"}, status.EnumValues)

	amount, _ := orders.Column("amount")
	assert.Equal(t, 10, amount.Precision)
	assert.Equal(t, 2, amount.Scale)
	assert.Equal(t, "amount >= 0", amount.Check)

	quantity, _ := orders.Column("quantity")
	assert.Equal(t, "SMALLINT UNSIGNED", quantity.Type)
	assert.True(t, quantity.Unsigned)

	assert.Equal(t, []string{"quantity <= 500"}, orders.Checks)
}

func TestParseMySQLInlineEnum(t *testing.T) {
	tables, err := NewParser().Parse("CREATE TABLE `tickets` (`id` INT AUTO_INCREMENT PRIMARY KEY, `level` ENUM('low','it''s high') NOT NULL);")
	require.NoError(t, err)
	require.Len(t, tables, 1)

	id, _ := tables[0].Column("id")
	assert.True(t, id.IsAutoIncrement)

	level, _ := tables[0].Column("level")
	assert.Equal(t, []string{"low", "it's high"}, level.EnumValues)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_users.sql"), []byte("CREATE TABLE users (id INT PRIMARY KEY)"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_posts.sql"), []byte("CREATE TABLE posts (id INT PRIMARY KEY, user_id INT REFERENCES users(id))"), 0644))

	tables, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "posts", tables[1].Name)

	fk, ok := tables[1].ForeignKeyFor("user_id")
	require.True(t, ok)
	assert.Equal(t, "users", fk.RefTable)
}
