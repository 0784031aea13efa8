package generation

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// FileGenerator emits one column of an uploaded file, record by record.
type FileGenerator struct {
	Column string
	Meta   FileMeta
	Cache  *FileCache
}

func (f *FileGenerator) cache() *FileCache {
	if f.Cache == nil {
		return DefaultFileCache
	}
	return f.Cache
}

func (f *FileGenerator) Generate(ctx context.Context, count int, c ColumnConstraint) Stream {
	parsed, err := f.cache().Load(f.Meta)
	if err != nil {
		return errStream{err}
	}
	idx, err := resolveColumn(parsed, f.Meta, f.Column)
	if err != nil {
		return errStream{err}
	}
	if count > len(parsed.Records) {
		return errStream{fmt.Errorf("file %s has %d records but %d were requested", f.Meta.Path, len(parsed.Records), count)}
	}

	return newFuncStream(count, func(ctx context.Context, i int) (sql.NullString, error) {
		rec := parsed.Records[i]
		if idx >= len(rec) {
			return text(""), nil
		}
		return text(rec[idx]), nil
	})
}

// resolveColumn prefers an in-range index, then an exact header match, then
// a case-insensitive one.
func resolveColumn(f *ParsedFile, meta FileMeta, fallbackName string) (int, error) {
	if meta.ColumnIndex != nil {
		if i := *meta.ColumnIndex; i >= 0 && i < len(f.Headers) {
			return i, nil
		}
	}

	name := meta.ColumnName
	if name == "" {
		name = fallbackName
	}
	for i, h := range f.Headers {
		if h == name {
			return i, nil
		}
	}
	for i, h := range f.Headers {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}

	missing := name
	if meta.ColumnIndex != nil {
		missing = fmt.Sprintf("%s (index %d)", name, *meta.ColumnIndex)
	}
	return 0, &MappingError{Path: meta.Path, Column: missing}
}

// RowCount reports the number of records the file source provides.
func (c *FileCache) RowCount(meta FileMeta) (int, error) {
	f, err := c.Load(meta)
	if err != nil {
		return 0, err
	}
	return len(f.Records), nil
}
