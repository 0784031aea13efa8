package database

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnsupportedProvider = errors.New("unsupported database provider")

// DatabaseAdapter is what the generation engine needs from a live database:
// reference sampling for foreign-key columns and direct inserts.
type DatabaseAdapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Reference sampling
	FetchUniqueSamples(ctx context.Context, table, column string, count int) ([]string, error)
	FetchRandomSamples(ctx context.Context, table, column string, count int) ([]string, error)

	// Direct insert; a nil value is written as NULL
	InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error)

	// Literal quoting for SQL statement files
	QuoteIdentifier(name string) string
	QuoteLiteral(value string) string
}

// Open creates the adapter for provider and connects it.
func Open(ctx context.Context, provider, url string) (DatabaseAdapter, error) {
	adapter, err := NewAdapter(provider)
	if err != nil {
		return nil, err
	}
	if err := adapter.Connect(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", provider, err)
	}
	return adapter, nil
}
