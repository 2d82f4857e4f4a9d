// Package users declares the repository contract for registered accounts
// and its document-store implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/libertalk/internal/server/models"
)

// Repository stores users keyed by username.
type Repository interface {
	// Create stores a new user; common.ErrorAlreadyExists if the name is taken.
	Create(ctx context.Context, user *models.User) error
	// Get returns the user or common.ErrorNotFound.
	Get(ctx context.Context, username string) (*models.User, error)
	// Update replaces the stored user record.
	Update(ctx context.Context, user *models.User) error
}
