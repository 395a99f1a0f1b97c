package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migrate runs all database migrations
func migrate(ctx context.Context, db *sql.DB, migrations []string) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

var sqliteMigrations = []string{
	migrationCreateKV,
}

var postgresMigrations = []string{
	migrationCreateKVPostgres,
}

const migrationCreateKV = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

const migrationCreateKVPostgres = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT NOW()
);
`
