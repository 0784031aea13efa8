package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/yuja201/S13P31B201-sub000/internal/database/common"
)

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	// Generated values are text; the simple protocol lets the server coerce
	// them to the column type instead of rejecting a text-typed parameter.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Adapter) uniqueSampleQuery(table, column string, count int) (string, []interface{}, error) {
	return common.BuildSampleQuery(p.qb, common.SampleQuery{
		Table: table, Column: column, Limit: count, Distinct: true, Cast: "::text",
	})
}

func (p *Adapter) randomSampleQuery(table, column string, count int) (string, []interface{}, error) {
	return common.BuildSampleQuery(p.qb, common.SampleQuery{
		Table: table, Column: column, Limit: count, Random: "RANDOM()", Cast: "::text",
	})
}

func (p *Adapter) FetchUniqueSamples(ctx context.Context, table, column string, count int) ([]string, error) {
	query, args, err := p.uniqueSampleQuery(table, column, count)
	if err != nil {
		return nil, err
	}
	return p.queryStrings(ctx, query, args...)
}

func (p *Adapter) FetchRandomSamples(ctx context.Context, table, column string, count int) ([]string, error) {
	query, args, err := p.randomSampleQuery(table, column, count)
	if err != nil {
		return nil, err
	}
	return p.queryStrings(ctx, query, args...)
}

func (p *Adapter) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v *string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v != nil {
			values = append(values, *v)
		}
	}
	return values, rows.Err()
}

func (p *Adapter) InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error) {
	query, args, err := common.BuildInsert(p.qb, table, columns, rows)
	if err != nil {
		return 0, err
	}
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p *Adapter) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (p *Adapter) QuoteLiteral(value string) string {
	return pq.QuoteLiteral(value)
}
