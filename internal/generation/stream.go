package generation

import (
	"context"
	"database/sql"
	"io"
	"log"
)

// Stream yields exactly the number of values it was created for, then
// io.EOF. A stream is single-pass and must not be shared by two consumers.
type Stream interface {
	Next(ctx context.Context) (sql.NullString, error)
}

// Generator is one value strategy bound to its column settings.
type Generator interface {
	Generate(ctx context.Context, count int, c ColumnConstraint) Stream
}

// Logger is the minimal logging interface used by the engine.
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...any)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func logfOf(l Logger) func(format string, v ...any) {
	if l == nil {
		return log.New(discardWriter{}, "", 0).Printf
	}
	return l.Printf
}

func text(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// funcStream calls next once per slot, in order.
type funcStream struct {
	count int
	i     int
	err   error
	next  func(ctx context.Context, i int) (sql.NullString, error)
}

func newFuncStream(count int, next func(ctx context.Context, i int) (sql.NullString, error)) *funcStream {
	return &funcStream{count: count, next: next}
}

func (s *funcStream) Next(ctx context.Context) (sql.NullString, error) {
	if s.err != nil {
		return sql.NullString{}, s.err
	}
	if s.i >= s.count {
		return sql.NullString{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return sql.NullString{}, err
	}
	v, err := s.next(ctx, s.i)
	if err != nil {
		s.err = err
		return sql.NullString{}, err
	}
	s.i++
	return v, nil
}

type errStream struct{ err error }

func (s errStream) Next(context.Context) (sql.NullString, error) {
	return sql.NullString{}, s.err
}

// Collect drains a stream into a slice.
func Collect(ctx context.Context, s Stream) ([]sql.NullString, error) {
	var out []sql.NullString
	for {
		v, err := s.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}
