package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
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

// NewWithDB wraps an already opened handle.
func NewWithDB(db *sql.DB) *Adapter {
	a := New()
	a.db = db
	return a
}

var sslReplacer = strings.NewReplacer(
	"ssl-mode=REQUIRED", "tls=skip-verify",
	"ssl-mode=DISABLED", "tls=false",
	"ssl-mode=VERIFY_CA", "tls=true",
	"ssl-mode=VERIFY_IDENTITY", "tls=true",
	"sslmode=require", "tls=skip-verify",
	"sslmode=disable", "tls=false",
	"sslmode=verify-ca", "tls=true",
	"sslmode=verify-full", "tls=true",
)

// ConvertDSN turns a mysql:// URL into a driver DSN. Anything else is
// returned unchanged.
func ConvertDSN(url string) string {
	if !strings.HasPrefix(url, "mysql://") {
		return url
	}
	dsn := strings.TrimPrefix(url, "mysql://")

	atIndex := strings.LastIndex(dsn, "@")
	if atIndex <= 0 {
		return dsn
	}
	credentials := dsn[:atIndex]
	remainder := dsn[atIndex+1:]

	slashIndex := strings.Index(remainder, "/")
	if slashIndex <= 0 {
		return dsn
	}
	hostPort := remainder[:slashIndex]
	dbAndParams := sslReplacer.Replace(remainder[slashIndex+1:])

	return fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
}

func (m *Adapter) Connect(ctx context.Context, url string) error {
	db, err := sql.Open("mysql", ConvertDSN(url))
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	m.db = db
	return nil
}

func (m *Adapter) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *Adapter) FetchUniqueSamples(ctx context.Context, table, column string, count int) ([]string, error) {
	query, args, err := common.BuildSampleQuery(m.qb, common.SampleQuery{
		Table: table, Column: column, Limit: count, Distinct: true,
	})
	if err != nil {
		return nil, err
	}
	return common.QueryStrings(ctx, m.db, query, args...)
}

func (m *Adapter) FetchRandomSamples(ctx context.Context, table, column string, count int) ([]string, error) {
	query, args, err := common.BuildSampleQuery(m.qb, common.SampleQuery{
		Table: table, Column: column, Limit: count, Random: "RAND()",
	})
	if err != nil {
		return nil, err
	}
	return common.QueryStrings(ctx, m.db, query, args...)
}

func (m *Adapter) InsertRows(ctx context.Context, table string, columns []string, rows [][]interface{}) (int64, error) {
	query, args, err := common.BuildInsert(m.qb, table, columns, rows)
	if err != nil {
		return 0, err
	}
	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (m *Adapter) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (m *Adapter) QuoteLiteral(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
