package storage

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/libertalk/internal/common"
)

// MemoryStore keeps documents in process memory. Documents are copied on
// the way in and out so callers never share buffers.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[Kind]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[Kind]map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, kind Kind, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[kind][key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(doc), nil
}

func (s *MemoryStore) Insert(_ context.Context, kind Kind, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[kind][key]; ok {
		return common.ErrorAlreadyExists
	}
	s.collection(kind)[key] = clone(doc)
	return nil
}

func (s *MemoryStore) Put(_ context.Context, kind Kind, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collection(kind)[key] = clone(doc)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, kind Kind) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.docs[kind]))
	for k, v := range s.docs[kind] {
		out[k] = clone(v)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

// collection must be called with s.mu held for writing.
func (s *MemoryStore) collection(kind Kind) map[string][]byte {
	c, ok := s.docs[kind]
	if !ok {
		c = make(map[string][]byte)
		s.docs[kind] = c
	}
	return c
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
