// package services defines interface Service for talking to a running songlist server
package services

import (
	"context"

	"github.com/desertthunder/songlist/internal/models"
)

// Service defines the catalogue operations a client can perform against the API.
type Service interface {
	// Login exchanges the operator credential for a bearer token.
	Login(ctx context.Context, username, password string) (*models.TokenResponse, error)

	// Health reports whether the server and its database are reachable.
	Health(ctx context.Context) error

	// List returns every song in a collection.
	List(ctx context.Context, c models.Collection) ([]models.Song, error)

	// Create stores a new song in a collection and returns it with its id.
	Create(ctx context.Context, c models.Collection, in models.SongInput) (*models.Song, error)

	// Update applies a partial update. For [models.Songs] the server also looks in todo.
	Update(ctx context.Context, c models.Collection, patch models.SongPatch) (*models.Song, error)

	// Move moves ids between collections and reports the ids that were not found.
	Move(ctx context.Context, direction models.Direction, ids []string) (*models.BulkResult, error)

	// Delete removes ids from a collection and reports the ids that were not found.
	Delete(ctx context.Context, c models.Collection, ids []string) (*models.BulkResult, error)
}
