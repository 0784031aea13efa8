package database

import (
	"fmt"

	"github.com/yuja201/S13P31B201-sub000/internal/database/mysql"
	"github.com/yuja201/S13P31B201-sub000/internal/database/postgres"
	"github.com/yuja201/S13P31B201-sub000/internal/database/sqlite"
)

func NewAdapter(provider string) (DatabaseAdapter, error) {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New(), nil
	case "mysql":
		return mysql.New(), nil
	case "sqlite", "sqlite3":
		return sqlite.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
}
