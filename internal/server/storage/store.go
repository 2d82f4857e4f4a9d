// Package storage is the persistence collaborator: a keyed document store
// holding one JSON document per user and per room. Every write replaces a
// whole document, so a failed write leaves the previous version in place.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Kind selects a document collection.
type Kind string

const (
	KindUsers Kind = "users"
	KindRooms Kind = "rooms"
)

// Store is implemented by every backend.
type Store interface {
	// Get returns the document stored under key, or common.ErrorNotFound.
	Get(ctx context.Context, kind Kind, key string) ([]byte, error)
	// Insert stores a new document and fails with common.ErrorAlreadyExists
	// if key is taken. The check and the write are atomic.
	Insert(ctx context.Context, kind Kind, key string, doc []byte) error
	// Put replaces (or creates) the document under key.
	Put(ctx context.Context, kind Kind, key string, doc []byte) error
	// Load returns every document of kind keyed by its key.
	Load(ctx context.Context, kind Kind) (map[string][]byte, error)
	Close() error
}

// Open picks a backend from the DSN scheme:
//
//	memory://                 in-process maps
//	file:///var/lib/libertalk users.json and rooms.json in the directory
//	postgres://...            PostgreSQL via pgx
//	sqlite:///path/to/db      SQLite via modernc.org/sqlite
func Open(ctx context.Context, dsn string) (Store, error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return nil, fmt.Errorf("invalid storage dsn %q", dsn)
	}

	switch scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(rest)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, dsn)
	case "sqlite":
		return OpenSQLite(ctx, rest)
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q", scheme)
	}
}
