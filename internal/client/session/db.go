package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ajenda/ajenda/internal/client/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// DefaultDSN is a shared-cache in-memory database: it lives exactly as long
// as the process keeps a connection open.
const DefaultDSN = "file:ajenda-session?mode=memory&cache=shared"

// RunMigrations brings the schema up to date. Running it twice is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens the session database at dsn and migrates it.
//
// The pool is pinned to one connection that never idles out, otherwise an
// in-memory database would vanish together with its last connection.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(0)
	db.SetConnMaxLifetime(0)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
