package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/libertalk/internal/filex"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
)

// URLPrefix is where the web layer serves files of a LocalStore.
const URLPrefix = "/uploads/"

// LocalStore writes uploads into a single directory.
type LocalStore struct {
	dir     string
	maxSize int64
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir string, maxSize int64) (*LocalStore, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	return &LocalStore{dir: abs, maxSize: maxSize}, nil
}

// Dir is the absolute upload directory.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Save(ctx context.Context, kind Kind, filename string, data []byte) (*models.Attachment, error) {
	name, contentType, err := prepare(kind, filename, data, s.maxSize)
	if err != nil {
		return nil, err
	}

	if err := filex.WriteFileAtomic(filepath.Join(s.dir, name), data, 0o640); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	return &models.Attachment{
		Name:        SanitizeName(filename),
		Path:        name,
		ContentType: contentType,
	}, nil
}

func (s *LocalStore) URL(_ context.Context, path string) (string, error) {
	return URLPrefix + strings.TrimPrefix(path, "/"), nil
}

func (s *LocalStore) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(path)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
