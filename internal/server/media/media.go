// Package media stores uploaded files (attachments, voice recordings and
// avatars) and hands back references the chat core keeps in its records.
package media

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Kind is the declared purpose of an upload; it selects the accepted
// extensions.
type Kind string

const (
	KindFile  Kind = "file"
	KindAudio Kind = "audio"
	KindImage Kind = "image"
)

var allowedExtensions = map[Kind][]string{
	KindFile: {"txt", "pdf", "png", "jpg", "jpeg", "gif", "doc", "docx",
		"mp3", "wav", "ogg", "m4a", "mp4", "webm", "mov", "avi"},
	KindAudio: {"mp3", "wav", "ogg", "m4a", "webm"},
	KindImage: {"png", "jpg", "jpeg", "gif", "webp"},
}

// DefaultMaxSize caps uploads when a store is built with a zero limit.
const DefaultMaxSize int64 = 16 << 20

// Store keeps raw upload bytes and returns a reference to them.
type Store interface {
	// Save validates and stores data. It fails with common.ErrorUnsupportedType
	// or common.ErrorTooLarge before anything is written.
	Save(ctx context.Context, kind Kind, filename string, data []byte) (*models.Attachment, error)
	// URL turns a stored path into something a browser can fetch.
	URL(ctx context.Context, path string) (string, error)
	// Delete removes a stored upload. A path that is already gone is not an
	// error.
	Delete(ctx context.Context, path string) error
}

// Allowed reports whether filename has an extension accepted for kind.
func Allowed(kind Kind, filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ext != "" && slices.Contains(allowedExtensions[kind], ext)
}

// SanitizeName reduces a client supplied file name to a safe base name made
// of letters, digits, dots, dashes and underscores.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return strings.TrimLeft(b.String(), "._")
}

// prepare runs the checks shared by every backend and returns the stored
// name and detected content type.
func prepare(kind Kind, filename string, data []byte, maxSize int64) (string, string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if int64(len(data)) > maxSize {
		return "", "", fmt.Errorf("%w: %d bytes, limit %d", common.ErrorTooLarge, len(data), maxSize)
	}

	name := SanitizeName(filename)
	if name == "" || !Allowed(kind, name) {
		return "", "", fmt.Errorf("%w: %s upload %q", common.ErrorUnsupportedType, kind, filename)
	}

	mtype := mimetype.Detect(data)
	if kind == KindImage && !strings.HasPrefix(mtype.String(), "image/") {
		return "", "", fmt.Errorf("%w: %q is %s, not an image", common.ErrorUnsupportedType, filename, mtype.String())
	}

	return fmt.Sprintf("%s_%s", uuid.NewString(), name), mtype.String(), nil
}
