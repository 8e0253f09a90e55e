package artists

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"bandhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore keeps artists in process memory. It backs STORE_BACKEND=memory
// for local runs and the handler tests, and mirrors MongoStore semantics.
type MemStore struct {
	mu      sync.RWMutex
	artists map[primitive.ObjectID]models.Artist
}

func NewMemStore() *MemStore {
	return &MemStore{artists: make(map[primitive.ObjectID]models.Artist)}
}

func clone(a models.Artist) *models.Artist {
	a.SongsList = slices.Clone(a.SongsList)
	a.UpcomingEvents = slices.Clone(a.UpcomingEvents)
	return &a
}

// usernameTaken must be called with mu held.
func (m *MemStore) usernameTaken(username string, except primitive.ObjectID) bool {
	for id, a := range m.artists {
		if id != except && a.Username == username {
			return true
		}
	}
	return false
}

func (m *MemStore) Create(_ context.Context, a *models.Artist) (*models.Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.usernameTaken(a.Username, primitive.NilObjectID) {
		return nil, fmt.Errorf("insert artist: %w", ErrConflict)
	}
	doc := *clone(*a)
	doc.ID = primitive.NewObjectID()
	if doc.SongsList == nil {
		doc.SongsList = []models.Song{}
	}
	if doc.UpcomingEvents == nil {
		doc.UpcomingEvents = []models.Event{}
	}
	m.artists[doc.ID] = doc
	return clone(doc), nil
}

func (m *MemStore) FindByID(_ context.Context, id string) (*models.Artist, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.artists[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

func (m *MemStore) FindByUsername(_ context.Context, username string) (*models.Artist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.artists {
		if a.Username == username {
			return clone(a), nil
		}
	}
	return nil, ErrNotFound
}

// modify runs fn on a copy of the artist and stores the result if fn succeeds.
func (m *MemStore) modify(id string, fn func(a *models.Artist) error) (*models.Artist, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.artists[oid]
	if !ok {
		return nil, ErrNotFound
	}
	next := clone(cur)
	if err := fn(next); err != nil {
		return nil, err
	}
	m.artists[oid] = *next
	return clone(*next), nil
}

func (m *MemStore) Update(_ context.Context, id string, fields map[string]any) (*models.Artist, error) {
	return m.modify(id, func(a *models.Artist) error {
		raw, err := bson.Marshal(a)
		if err != nil {
			return fmt.Errorf("update artist: %w", err)
		}
		var doc bson.M
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("update artist: %w", err)
		}
		for k, v := range fields {
			doc[k] = v
		}
		if raw, err = bson.Marshal(doc); err != nil {
			return fmt.Errorf("update artist: %w", err)
		}
		var updated models.Artist
		if err := bson.Unmarshal(raw, &updated); err != nil {
			return fmt.Errorf("update artist: %w", err)
		}
		if updated.Username != a.Username && m.usernameTaken(updated.Username, a.ID) {
			return fmt.Errorf("update artist: %w", ErrConflict)
		}
		*a = updated
		return nil
	})
}

func (m *MemStore) PushSong(_ context.Context, id string, song models.Song) (*models.Artist, error) {
	return m.modify(id, func(a *models.Artist) error {
		song.ID = primitive.NewObjectID()
		a.SongsList = append(a.SongsList, song)
		return nil
	})
}

func (m *MemStore) PushEvent(_ context.Context, id string, event models.Event) (*models.Artist, error) {
	return m.modify(id, func(a *models.Artist) error {
		event.ID = primitive.NewObjectID()
		a.UpcomingEvents = append(a.UpcomingEvents, event)
		return nil
	})
}

func (m *MemStore) PullSong(_ context.Context, id, songID string) (bool, error) {
	removed := false
	_, err := m.modify(id, func(a *models.Artist) error {
		before := len(a.SongsList)
		a.SongsList = slices.DeleteFunc(a.SongsList, func(s models.Song) bool { return s.ID.Hex() == songID })
		removed = len(a.SongsList) != before
		return nil
	})
	if err == ErrNotFound {
		return false, nil
	}
	return removed, err
}

func (m *MemStore) PullEvent(_ context.Context, id, eventID string) (bool, error) {
	removed := false
	_, err := m.modify(id, func(a *models.Artist) error {
		before := len(a.UpcomingEvents)
		a.UpcomingEvents = slices.DeleteFunc(a.UpcomingEvents, func(e models.Event) bool { return e.ID.Hex() == eventID })
		removed = len(a.UpcomingEvents) != before
		return nil
	})
	if err == ErrNotFound {
		return false, nil
	}
	return removed, err
}

func (m *MemStore) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.artists[oid]; !ok {
		return ErrNotFound
	}
	delete(m.artists, oid)
	return nil
}
