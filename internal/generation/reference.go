package generation

import (
	"context"
	"database/sql"
	"fmt"
	"io"
)

const defaultReferenceSampleSize = 1000

// Sampler reads existing values of a referenced column.
type Sampler interface {
	FetchUniqueSamples(ctx context.Context, table, column string, count int) ([]string, error)
	FetchRandomSamples(ctx context.Context, table, column string, count int) ([]string, error)
	Close() error
}

// SampleSource opens a fresh sampler; the caller closes it after one call.
type SampleSource func(ctx context.Context) (Sampler, error)

// ReferenceGenerator draws foreign key values from the referenced table.
type ReferenceGenerator struct {
	Table      string
	Column     string
	Meta       ReferenceMeta
	Source     SampleSource
	SampleSize int
	Logger     Logger
}

func (r *ReferenceGenerator) Generate(ctx context.Context, count int, c ColumnConstraint) Stream {
	table, column := r.Meta.Table, r.Meta.Column
	if table == "" {
		table = c.ReferencedTable
	}
	if column == "" {
		column = c.ReferencedColumn
	}
	if table == "" || column == "" {
		return errStream{fmt.Errorf("column %s has no referenced table and column", r.Column)}
	}
	if r.Source == nil {
		return errStream{fmt.Errorf("column %s: no database connection for reference sampling", r.Column)}
	}
	return &referenceStream{
		gen:    r,
		count:  count,
		table:  table,
		column: column,
		unique: r.Meta.EnsureUnique || c.Unique,
	}
}

type referenceStream struct {
	gen    *ReferenceGenerator
	count  int
	table  string
	column string
	unique bool

	loaded bool
	sample []string
	i      int
}

func (s *referenceStream) Next(ctx context.Context) (sql.NullString, error) {
	if s.i >= s.count {
		return sql.NullString{}, io.EOF
	}
	if !s.loaded {
		if err := s.load(ctx); err != nil {
			return sql.NullString{}, err
		}
		s.loaded = true
	}

	if s.unique {
		if s.i >= len(s.sample) {
			return sql.NullString{}, io.EOF
		}
		v := s.sample[s.i]
		s.i++
		return text(v), nil
	}

	s.i++
	if len(s.sample) == 0 {
		return sql.NullString{}, nil
	}
	return text(s.sample[(s.i-1)%len(s.sample)]), nil
}

func (s *referenceStream) load(ctx context.Context) error {
	if s.count == 0 {
		return nil
	}
	sampler, err := s.gen.Source(ctx)
	if err != nil {
		return fmt.Errorf("open reference connection: %w", err)
	}
	defer sampler.Close()

	logf := logfOf(s.gen.Logger)
	if s.unique {
		values, err := sampler.FetchUniqueSamples(ctx, s.table, s.column, s.count)
		if err != nil {
			return fmt.Errorf("sample %s.%s: %w", s.table, s.column, err)
		}
		s.sample = distinct(values, s.count)
		if len(s.sample) < s.count {
			logf("warning: %s.%s has only %d distinct values, %d requested for %s",
				s.table, s.column, len(s.sample), s.count, s.gen.Column)
		}
		return nil
	}

	size := s.gen.SampleSize
	if size <= 0 {
		size = defaultReferenceSampleSize
	}
	if s.count < size {
		size = s.count
	}
	values, err := sampler.FetchRandomSamples(ctx, s.table, s.column, size)
	if err != nil {
		return fmt.Errorf("sample %s.%s: %w", s.table, s.column, err)
	}
	if len(values) == 0 {
		logf("warning: %s.%s is empty, %s will be NULL", s.table, s.column, s.gen.Column)
	}
	s.sample = values
	return nil
}

func distinct(values []string, limit int) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}
