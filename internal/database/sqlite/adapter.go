package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/yuja201/S13P31B201-sub000/internal/database/common"
)

type Adapter struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func NewWithDB(db *sql.DB) *Adapter {
	a := New()
	a.db = db
	return a
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	if !strings.Contains(dbPath, "?") {
		dbPath += "?cache=shared&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(5 * time.Minute)

	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Adapter) FetchUniqueSamples(ctx context.Context, table, column string, count int) ([]string, error) {
	query, args, err := common.BuildSampleQuery(s.qb, common.SampleQuery{
		Table: table, Column: column, Limit: count, Distinct: true,
	})
	if err != nil {
		return nil, err
	}
	return common.QueryStrings(ctx, s.db, query, args...)
}

func (s *Adapter) FetchRandomSamples(ctx context.Context, table, column string, count int) ([]string, error) {
	query, args, err := common.BuildSampleQuery(s.qb, common.SampleQuery{
		Table: table, Column: column, Limit: count, Random: "RANDOM()",
	})
	if err != nil {
		return nil, err
	}
	return common.QueryStrings(ctx, s.db, query, args...)
}

func (s *Adapter) InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error) {
	query, args, err := common.BuildInsert(s.qb, table, columns, rows)
	if err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Adapter) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Adapter) QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
