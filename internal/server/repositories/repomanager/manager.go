// Package repomanager vends the repositories bound to one storage backend.
package repomanager

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/libertalk/internal/server/repositories/rooms"
	"github.com/dmitrijs2005/libertalk/internal/server/repositories/users"
	"github.com/dmitrijs2005/libertalk/internal/server/storage"
)

type RepositoryManager interface {
	Users() users.Repository
	Rooms() rooms.Repository
	Close() error
}

// RetryPolicy bounds how hard the repositories try a failing backend.
type RetryPolicy struct {
	Retries uint64
	Base    time.Duration
	Timeout time.Duration
}

// DocumentRepositoryManager serves document repositories over a single store.
type DocumentRepositoryManager struct {
	store storage.Store
	users *users.DocumentRepository
	rooms *rooms.DocumentRepository
}

// NewDocumentRepositoryManager wraps store with the retry policy and builds
// the repositories on top of it.
func NewDocumentRepositoryManager(store storage.Store, policy RetryPolicy) *DocumentRepositoryManager {
	wrapped := storage.WithRetry(store, policy.Retries, policy.Base, policy.Timeout)
	return &DocumentRepositoryManager{
		store: wrapped,
		users: users.NewDocumentRepository(wrapped),
		rooms: rooms.NewDocumentRepository(wrapped),
	}
}

// Open opens the backend named by dsn and returns a manager over it.
func Open(ctx context.Context, dsn string, policy RetryPolicy) (*DocumentRepositoryManager, error) {
	store, err := storage.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return NewDocumentRepositoryManager(store, policy), nil
}

func (m *DocumentRepositoryManager) Users() users.Repository { return m.users }

func (m *DocumentRepositoryManager) Rooms() rooms.Repository { return m.rooms }

func (m *DocumentRepositoryManager) Close() error { return m.store.Close() }
