package rooms

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/storage"
)

// DocumentRepository keeps each room as a JSON document in a storage.Store.
type DocumentRepository struct {
	store storage.Store
}

func NewDocumentRepository(store storage.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

func (r *DocumentRepository) Create(ctx context.Context, room *models.Room) error {
	doc, err := encode(room)
	if err != nil {
		return err
	}
	if err := r.store.Insert(ctx, storage.KindRooms, room.Name, doc); err != nil {
		return fmt.Errorf("create room %s: %w", room.Name, err)
	}
	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, name string) (*models.Room, error) {
	doc, err := r.store.Get(ctx, storage.KindRooms, name)
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", name, err)
	}
	return decode(name, doc)
}

func (r *DocumentRepository) Update(ctx context.Context, room *models.Room) error {
	doc, err := encode(room)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, storage.KindRooms, room.Name, doc); err != nil {
		return fmt.Errorf("update room %s: %w", room.Name, err)
	}
	return nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]*models.Room, error) {
	docs, err := r.store.Load(ctx, storage.KindRooms)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	out := make([]*models.Room, 0, len(docs))
	for name, doc := range docs {
		room, err := decode(name, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	slices.SortFunc(out, func(a, b *models.Room) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func encode(room *models.Room) ([]byte, error) {
	for i := range room.Messages {
		if err := room.Messages[i].CheckShape(); err != nil {
			return nil, fmt.Errorf("encode room %s: %w", room.Name, err)
		}
	}
	doc, err := json.Marshal(room)
	if err != nil {
		return nil, fmt.Errorf("encode room %s: %w", room.Name, err)
	}
	return doc, nil
}

// decode fills in the collections older records may lack so callers can
// append without nil checks.
func decode(name string, doc []byte) (*models.Room, error) {
	room := &models.Room{}
	if err := json.Unmarshal(doc, room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", name, err)
	}
	if room.Name == "" {
		room.Name = name
	}
	if room.Visibility == "" {
		room.Visibility = models.VisibilityOpen
	}
	if room.Moderators == nil {
		room.Moderators = []string{}
	}
	if room.BannedUsers == nil {
		room.BannedUsers = []string{}
	}
	if room.Messages == nil {
		room.Messages = []models.Message{}
	}
	for i := range room.Messages {
		if err := room.Messages[i].CheckShape(); err != nil {
			return nil, fmt.Errorf("decode room %s: %w", name, err)
		}
	}
	return room, nil
}
