package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/libertalk/internal/dbx"
	"github.com/dmitrijs2005/libertalk/internal/server/migrations"
	_ "modernc.org/sqlite"
)

var sqliteQueries = queries{
	get: `SELECT data FROM documents
		 WHERE kind = ? AND key = ?`,
	insert: `INSERT INTO documents (kind, key, data)
		 VALUES (?, ?, ?)
		 ON CONFLICT (kind, key) DO NOTHING`,
	put: `INSERT INTO documents (kind, key, data)
		 VALUES (?, ?, ?)
		 ON CONFLICT (kind, key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
	load: `SELECT key, data FROM documents
		 WHERE kind = ?
		 ORDER BY key`,
}

// NewSQLiteStore wraps an existing connection (or transaction). It does not
// run migrations.
func NewSQLiteStore(db dbx.DBTX) *SQLStore {
	return &SQLStore{db: db, q: sqliteQueries}
}

// OpenSQLite opens the database file at path, applies migrations and returns
// a store that owns the connection. SQLite allows a single writer, so the
// pool is capped at one connection.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	if err := migrate(ctx, db, "sqlite3", migrations.SQLite, "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := NewSQLiteStore(db)
	s.closer = db.Close
	return s, nil
}
