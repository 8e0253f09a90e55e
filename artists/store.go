package artists

import (
	"context"
	"errors"

	"bandhub/models"
)

var (
	ErrNotFound = errors.New("artist not found")
	// ErrConflict is returned when a write violates the unique username index.
	ErrConflict = errors.New("artist conflicts with an existing record")
)

// Store is the persistence boundary for artist documents. Every operation
// touches a single document.
type Store interface {
	Create(ctx context.Context, a *models.Artist) (*models.Artist, error)
	FindByID(ctx context.Context, id string) (*models.Artist, error)
	FindByUsername(ctx context.Context, username string) (*models.Artist, error)
	// Update sets the given top-level fields and returns the updated document.
	Update(ctx context.Context, id string, fields map[string]any) (*models.Artist, error)
	PushSong(ctx context.Context, id string, s models.Song) (*models.Artist, error)
	PushEvent(ctx context.Context, id string, e models.Event) (*models.Artist, error)
	// PullSong and PullEvent report whether an entry was actually removed.
	PullSong(ctx context.Context, id, songID string) (bool, error)
	PullEvent(ctx context.Context, id, eventID string) (bool, error)
	Delete(ctx context.Context, id string) error
}
