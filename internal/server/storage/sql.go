package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/dbx"
	"github.com/pressly/goose/v3"
)

// queries holds the dialect-specific statements of a SQLStore.
type queries struct {
	get    string
	insert string
	put    string
	load   string
}

// SQLStore keeps documents in a single "documents" table keyed by
// (kind, key). Concrete dialects are built by OpenPostgres and OpenSQLite.
type SQLStore struct {
	db dbx.DBTX
	q  queries

	closer func() error
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// migrate applies the embedded migrations of one dialect.
func migrate(ctx context.Context, db *sql.DB, dialect string, fsys fs.FS, dir string) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, kind Kind, key string) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, s.q.get, string(kind), key).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (s *SQLStore) Insert(ctx context.Context, kind Kind, key string, doc []byte) error {
	res, err := s.db.ExecContext(ctx, s.q.insert, string(kind), key, string(doc))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (s *SQLStore) Put(ctx context.Context, kind Kind, key string, doc []byte) error {
	if _, err := s.db.ExecContext(ctx, s.q.put, string(kind), key, string(doc)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, kind Kind) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, s.q.load, string(kind))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			key string
			doc []byte
		)
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out[key] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// PutAll replaces many documents of one kind in a single transaction.
func (s *SQLStore) PutAll(ctx context.Context, kind Kind, docs map[string][]byte) error {
	write := func(ctx context.Context, tx dbx.DBTX) error {
		for key, doc := range docs {
			if _, err := tx.ExecContext(ctx, s.q.put, string(kind), key, string(doc)); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	}

	db, ok := s.db.(*sql.DB)
	if !ok {
		return write(ctx, s.db)
	}
	return dbx.WithTx(ctx, db, nil, write)
}
