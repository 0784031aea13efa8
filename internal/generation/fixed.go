package generation

import (
	"context"
	"database/sql"
)

type FixedGenerator struct {
	Meta FixedMeta
}

func (f *FixedGenerator) Generate(ctx context.Context, count int, c ColumnConstraint) Stream {
	value := sql.NullString{}
	if f.Meta.Value != nil {
		value = text(*f.Meta.Value)
	}
	return newFuncStream(count, func(context.Context, int) (sql.NullString, error) {
		return value, nil
	})
}
