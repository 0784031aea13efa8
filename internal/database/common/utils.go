package common

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"
)

// validIdentifier validates SQL identifiers (table/column names) to prevent SQL injection
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

func ValidateIdentifiers(names ...string) error {
	for _, name := range names {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("invalid identifier: %q", name)
		}
	}
	return nil
}

// SampleQuery describes one reference-sampling SELECT.
type SampleQuery struct {
	Table    string
	Column   string
	Limit    int
	Distinct bool
	Random   string // ORDER BY expression for random sampling, empty for none
	Cast     string // optional cast applied to the selected column, e.g. "::text"
}

func BuildSampleQuery(qb squirrel.StatementBuilderType, q SampleQuery) (string, []interface{}, error) {
	if err := ValidateIdentifiers(q.Table, q.Column); err != nil {
		return "", nil, err
	}
	if q.Limit <= 0 {
		return "", nil, fmt.Errorf("sample limit must be positive, got %d", q.Limit)
	}

	sb := qb.Select(q.Column + q.Cast).
		From(q.Table).
		Where(squirrel.NotEq{q.Column: nil}).
		Limit(uint64(q.Limit))
	if q.Distinct {
		sb = sb.Distinct()
	}
	if q.Random != "" {
		sb = sb.OrderBy(q.Random)
	}
	return sb.ToSql()
}

func BuildInsert(qb squirrel.StatementBuilderType, table string, columns []string, rows [][]interface{}) (string, []interface{}, error) {
	if err := ValidateIdentifiers(append([]string{table}, columns...)...); err != nil {
		return "", nil, err
	}
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("no rows to insert into %s", table)
	}

	ib := qb.Insert(table).Columns(columns...)
	for _, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("row has %d values, expected %d", len(row), len(columns))
		}
		ib = ib.Values(row...)
	}
	return ib.ToSql()
}

// QueryStrings runs a single-column query over database/sql and returns the
// non-NULL values as text.
func QueryStrings(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	return values, rows.Err()
}

// FormatValue renders a driver value as the text the generators emit.
func FormatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}
