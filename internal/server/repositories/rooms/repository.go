// Package rooms declares the repository contract for chat rooms and its
// document-store implementation.
package rooms

import (
	"context"

	"github.com/dmitrijs2005/libertalk/internal/server/models"
)

// Repository stores rooms keyed by name. A room travels as one document
// together with its moderators, bans and message log.
type Repository interface {
	// Create stores a new room; common.ErrorAlreadyExists if the name is taken.
	Create(ctx context.Context, room *models.Room) error
	// Get returns the room or common.ErrorNotFound.
	Get(ctx context.Context, name string) (*models.Room, error)
	// Update replaces the whole stored room.
	Update(ctx context.Context, room *models.Room) error
	// List returns every room sorted by name.
	List(ctx context.Context) ([]*models.Room, error)
}
