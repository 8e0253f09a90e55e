package artists

import (
	"context"
	"errors"
	"sync/atomic"

	"bandhub/models"
	"bandhub/rdx"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
)

// generationSlots is the number of write counters ids are hashed onto.
const generationSlots = 256

// Cache is a best-effort artist cache keyed by id. Get returns rdx.ErrMiss
// for absent keys.
type Cache interface {
	Get(ctx context.Context, id string) (*models.Artist, error)
	Set(ctx context.Context, a *models.Artist) error
	Del(ctx context.Context, id string) error
}

// CachedStore serves FindByID from the cache and drops the cached copy after
// every successful write. Cache failures are logged and never fail a request.
//
// Every write bumps a counter for its id. A fill whose store read overlapped
// a write is not cached, or is dropped again if the write lands mid-fill.
type CachedStore struct {
	Store
	cache       Cache
	logger      zerolog.Logger
	generations [generationSlots]atomic.Uint64
}

func NewCachedStore(s Store, c Cache, logger zerolog.Logger) *CachedStore {
	return &CachedStore{Store: s, cache: c, logger: logger}
}

func (s *CachedStore) FindByID(ctx context.Context, id string) (*models.Artist, error) {
	a, err := s.cache.Get(ctx, id)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, rdx.ErrMiss) {
		s.logger.Warn().Err(err).Str("artist", id).Msg("cache read failed")
	}

	gen := s.generation(id).Load()
	a, err = s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, id, gen, a)
	return a, nil
}

func (s *CachedStore) generation(id string) *atomic.Uint64 {
	return &s.generations[xxhash.Sum64String(id)%generationSlots]
}

// fill caches a unless a write to id happened since gen was read.
func (s *CachedStore) fill(ctx context.Context, id string, gen uint64, a *models.Artist) {
	counter := s.generation(id)
	if counter.Load() != gen {
		return
	}
	if err := s.cache.Set(ctx, a); err != nil {
		s.logger.Warn().Err(err).Str("artist", id).Msg("cache fill failed")
		return
	}
	if counter.Load() != gen {
		s.dropCached(ctx, id)
	}
}

// invalidate must run after the store write so a concurrent fill either sees
// the new counter or has its entry deleted here.
func (s *CachedStore) invalidate(ctx context.Context, id string) {
	s.generation(id).Add(1)
	s.dropCached(ctx, id)
}

func (s *CachedStore) dropCached(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("artist", id).Msg("cache invalidation failed")
	}
}

func (s *CachedStore) Update(ctx context.Context, id string, fields map[string]any) (*models.Artist, error) {
	a, err := s.Store.Update(ctx, id, fields)
	if err == nil {
		s.invalidate(ctx, id)
	}
	return a, err
}

func (s *CachedStore) PushSong(ctx context.Context, id string, song models.Song) (*models.Artist, error) {
	a, err := s.Store.PushSong(ctx, id, song)
	if err == nil {
		s.invalidate(ctx, id)
	}
	return a, err
}

func (s *CachedStore) PushEvent(ctx context.Context, id string, event models.Event) (*models.Artist, error) {
	a, err := s.Store.PushEvent(ctx, id, event)
	if err == nil {
		s.invalidate(ctx, id)
	}
	return a, err
}

func (s *CachedStore) PullSong(ctx context.Context, id, songID string) (bool, error) {
	removed, err := s.Store.PullSong(ctx, id, songID)
	if removed {
		s.invalidate(ctx, id)
	}
	return removed, err
}

func (s *CachedStore) PullEvent(ctx context.Context, id, eventID string) (bool, error) {
	removed, err := s.Store.PullEvent(ctx, id, eventID)
	if removed {
		s.invalidate(ctx, id)
	}
	return removed, err
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	err := s.Store.Delete(ctx, id)
	if err == nil {
		s.invalidate(ctx, id)
	}
	return err
}
