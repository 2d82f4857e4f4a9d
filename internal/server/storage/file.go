package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/filex"
)

// FileStore keeps each kind in one JSON object file (users.json, rooms.json)
// inside dir. Writes rewrite the whole file through a temp file and rename.
// All access to one store goes through a single mutex, so concurrent writers
// to different keys cannot drop each other's updates.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	return &FileStore{dir: abs}, nil
}

func (s *FileStore) path(kind Kind) string {
	return filepath.Join(s.dir, string(kind)+".json")
}

// read must be called with s.mu held. A missing file is an empty collection.
func (s *FileStore) read(kind Kind) (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(s.path(kind))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	docs := map[string]json.RawMessage{}
	if len(b) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return docs, nil
}

// write must be called with s.mu held.
func (s *FileStore) write(kind Kind, docs map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(docs, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	return filex.WriteFileAtomic(s.path(kind), b, 0o600)
}

func (s *FileStore) Get(_ context.Context, kind Kind, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(kind)
	if err != nil {
		return nil, err
	}
	doc, ok := docs[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return doc, nil
}

func (s *FileStore) Insert(_ context.Context, kind Kind, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(kind)
	if err != nil {
		return err
	}
	if _, ok := docs[key]; ok {
		return common.ErrorAlreadyExists
	}
	docs[key] = clone(doc)
	return s.write(kind, docs)
}

func (s *FileStore) Put(_ context.Context, kind Kind, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(kind)
	if err != nil {
		return err
	}
	docs[key] = clone(doc)
	return s.write(kind, docs)
}

func (s *FileStore) Load(_ context.Context, kind Kind) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.read(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(docs))
	for k, v := range docs {
		out[k] = v
	}
	return out, nil
}

func (s *FileStore) Close() error { return nil }
