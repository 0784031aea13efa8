package types

import "strings"

type SchemaTable struct {
	Name        string
	Columns     []SchemaColumn
	PrimaryKey  string
	ForeignKeys []SchemaForeignKey
	Checks      []string // table-level CHECK clause bodies
}

type SchemaColumn struct {
	Name            string
	Type            string // declared SQL type, e.g. VARCHAR(255), INT UNSIGNED, DECIMAL(10,2)
	Nullable        bool
	Default         string
	IsPrimary       bool
	IsUnique        bool
	IsAutoIncrement bool
	Length          int // character length, 0 when not declared
	Precision       int
	Scale           int
	Unsigned        bool
	Check           string   // column-level CHECK clause body
	EnumValues      []string // values of an ENUM(...) type
	Min             *float64 // explicit bounds already computed by the schema layer
	Max             *float64

	ForeignKeyTable  string
	ForeignKeyColumn string
}

type SchemaForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

func (t SchemaTable) Column(name string) (SchemaColumn, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return SchemaColumn{}, false
}

// ForeignKeyFor returns the FK linkage of a column, consulting both the inline
// REFERENCES clause and table-level FOREIGN KEY constraints.
func (t SchemaTable) ForeignKeyFor(column string) (SchemaForeignKey, bool) {
	if c, ok := t.Column(column); ok && c.ForeignKeyTable != "" {
		return SchemaForeignKey{Column: column, RefTable: c.ForeignKeyTable, RefColumn: c.ForeignKeyColumn}, true
	}
	for _, fk := range t.ForeignKeys {
		if strings.EqualFold(fk.Column, column) {
			return fk, true
		}
	}
	return SchemaForeignKey{}, false
}
