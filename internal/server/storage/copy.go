package storage

import (
	"context"
	"fmt"
)

// BulkPutter is implemented by backends that can write a whole collection
// atomically.
type BulkPutter interface {
	PutAll(ctx context.Context, kind Kind, docs map[string][]byte) error
}

// Copy transfers every user and room document from src to dst, replacing
// documents with the same key. It returns the number of documents copied.
func Copy(ctx context.Context, dst, src Store) (int, error) {
	total := 0
	for _, kind := range []Kind{KindUsers, KindRooms} {
		docs, err := src.Load(ctx, kind)
		if err != nil {
			return total, fmt.Errorf("load %s: %w", kind, err)
		}

		if bulk, ok := dst.(BulkPutter); ok {
			if err := bulk.PutAll(ctx, kind, docs); err != nil {
				return total, fmt.Errorf("write %s: %w", kind, err)
			}
		} else {
			for key, doc := range docs {
				if err := dst.Put(ctx, kind, key, doc); err != nil {
					return total, fmt.Errorf("write %s %s: %w", kind, key, err)
				}
			}
		}
		total += len(docs)
	}
	return total, nil
}
