package dbexec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/lib/pq"              // registers "postgres"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"             // registers "sqlite"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Dialect maps a database/sql driver name to its SQL dialect.
func Dialect(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q (supported: postgres, pgx, sqlite, sqlite3)", ErrUnsupportedDriver, driver)
	}
}

// Open opens and pings a database.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if _, err := Dialect(driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(strings.ToLower(strings.TrimSpace(driver)), dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
