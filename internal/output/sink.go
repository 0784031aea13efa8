package output

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DefaultBatchSize = 100

// SinkResult describes what a finished sink produced.
type SinkResult struct {
	OutputPath string
	Inserted   bool
	Rows       int64
}

// Quoter renders identifiers and literals for one SQL dialect.
type Quoter interface {
	QuoteIdentifier(name string) string
	QuoteLiteral(value string) string
}

// SQLFileWriter writes rows as batched INSERT statements to <dir>/<table>.sql.
type SQLFileWriter struct {
	path      string
	file      *os.File
	w         *bufio.Writer
	quoter    Quoter
	header    string
	batchSize int
	batch     []string
	rows      int64
}

func NewSQLFileWriter(dir, table string, columns []string, quoter Quoter, batchSize int) (*SQLFileWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	path := filepath.Join(dir, table+".sql")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQL file for %s: %w", table, err)
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoter.QuoteIdentifier(col)
	}

	return &SQLFileWriter{
		path:      path,
		file:      file,
		w:         bufio.NewWriter(file),
		quoter:    quoter,
		header:    fmt.Sprintf("INSERT INTO %s (%s) VALUES\n", quoter.QuoteIdentifier(table), strings.Join(quoted, ", ")),
		batchSize: batchSize,
	}, nil
}

func (s *SQLFileWriter) formatValue(v sql.NullString) string {
	if !v.Valid {
		return "NULL"
	}
	return s.quoter.QuoteLiteral(v.String)
}

func (s *SQLFileWriter) WriteRow(ctx context.Context, row []sql.NullString) error {
	values := make([]string, len(row))
	for i, v := range row {
		values[i] = s.formatValue(v)
	}
	s.batch = append(s.batch, "("+strings.Join(values, ", ")+")")
	s.rows++
	if len(s.batch) >= s.batchSize {
		return s.flush()
	}
	return nil
}

func (s *SQLFileWriter) flush() error {
	if len(s.batch) == 0 {
		return nil
	}
	if _, err := s.w.WriteString(s.header + strings.Join(s.batch, ",\n") + ";\n\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	s.batch = s.batch[:0]
	return nil
}

func (s *SQLFileWriter) Finish(ctx context.Context) (SinkResult, error) {
	if err := s.flush(); err != nil {
		s.file.Close()
		return SinkResult{}, err
	}
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return SinkResult{}, fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	if err := s.file.Close(); err != nil {
		return SinkResult{}, err
	}
	return SinkResult{OutputPath: s.path, Rows: s.rows}, nil
}

// Abort discards the partial file.
func (s *SQLFileWriter) Abort() {
	s.file.Close()
	os.Remove(s.path)
}

// Inserter is the part of a database adapter the insert sink needs.
type Inserter interface {
	InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error)
}

// InsertSink writes rows straight into the database in batches.
type InsertSink struct {
	db        Inserter
	table     string
	columns   []string
	batchSize int
	batch     [][]interface{}
	rows      int64
}

func NewInsertSink(db Inserter, table string, columns []string, batchSize int) *InsertSink {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &InsertSink{db: db, table: table, columns: columns, batchSize: batchSize}
}

func (s *InsertSink) WriteRow(ctx context.Context, row []sql.NullString) error {
	values := make([]interface{}, len(row))
	for i, v := range row {
		if v.Valid {
			values[i] = v.String
		}
	}
	s.batch = append(s.batch, values)
	if len(s.batch) >= s.batchSize {
		return s.flush(ctx)
	}
	return nil
}

func (s *InsertSink) flush(ctx context.Context) error {
	if len(s.batch) == 0 {
		return nil
	}
	n, err := s.db.InsertRows(ctx, s.table, s.columns, s.batch)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", s.table, err)
	}
	s.rows += n
	s.batch = s.batch[:0]
	return nil
}

func (s *InsertSink) Finish(ctx context.Context) (SinkResult, error) {
	if err := s.flush(ctx); err != nil {
		return SinkResult{}, err
	}
	return SinkResult{Inserted: true, Rows: s.rows}, nil
}

// Abort drops buffered rows; batches already sent stay in the database.
func (s *InsertSink) Abort() {
	s.batch = nil
}
