package bunstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open connects to driver/dsn and returns a bun.DB with the matching dialect.
// In-memory sqlite databases are pinned to a single connection so every
// query sees the same data.
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite, "sqlite":
		sqldb, err := sql.Open(DriverSQLite, dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open sqlite database")
		}
		if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
			sqldb.SetMaxOpenConns(1)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres, "pg", "postgresql":
		sqldb, err := sql.Open(DriverPostgres, dsn)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "open postgres database")
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, goerrors.New(fmt.Sprintf("unsupported database driver %q", driver), goerrors.CategoryBadInput).
			WithTextCode("DB_UNSUPPORTED_DRIVER")
	}
}

// EnsureSchema creates the products table and its name index when missing.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().
		Model((*productRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "create products table")
	}

	if _, err := db.NewCreateIndex().
		Model((*productRecord)(nil)).
		Index("products_name_idx").
		Column("name").
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "create products name index")
	}
	return nil
}
