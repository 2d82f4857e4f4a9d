package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/libertalk/internal/dbx"
	"github.com/dmitrijs2005/libertalk/internal/server/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresQueries = queries{
	get: `SELECT data FROM documents
		 WHERE kind = $1 AND key = $2`,
	insert: `INSERT INTO documents (kind, key, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (kind, key) DO NOTHING`,
	put: `INSERT INTO documents (kind, key, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (kind, key) DO UPDATE SET data = excluded.data, updated_at = now()`,
	load: `SELECT key, data FROM documents
		 WHERE kind = $1
		 ORDER BY key`,
}

// NewPostgresStore wraps an existing connection (or transaction). It does
// not run migrations.
func NewPostgresStore(db dbx.DBTX) *SQLStore {
	return &SQLStore{db: db, q: postgresQueries}
}

// OpenPostgres connects through pgx, applies migrations and returns a store
// that owns the connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := migrate(ctx, db, "pgx", migrations.Postgres, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := NewPostgresStore(db)
	s.closer = db.Close
	return s, nil
}
