package users

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/libertalk/internal/server/models"
	"github.com/dmitrijs2005/libertalk/internal/server/storage"
)

// DocumentRepository keeps each user as a JSON document in a storage.Store.
type DocumentRepository struct {
	store storage.Store
}

func NewDocumentRepository(store storage.Store) *DocumentRepository {
	return &DocumentRepository{store: store}
}

func (r *DocumentRepository) Create(ctx context.Context, user *models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := r.store.Insert(ctx, storage.KindUsers, user.UserName, doc); err != nil {
		return fmt.Errorf("create user %s: %w", user.UserName, err)
	}
	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, username string) (*models.User, error) {
	doc, err := r.store.Get(ctx, storage.KindUsers, username)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", username, err)
	}
	user := &models.User{}
	if err := json.Unmarshal(doc, user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", username, err)
	}
	if user.UserName == "" {
		user.UserName = username
	}
	return user, nil
}

func (r *DocumentRepository) Update(ctx context.Context, user *models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := r.store.Put(ctx, storage.KindUsers, user.UserName, doc); err != nil {
		return fmt.Errorf("update user %s: %w", user.UserName, err)
	}
	return nil
}
