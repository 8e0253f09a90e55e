package rdx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bandhub/models"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache miss")

const artistPrefix = "artist:"

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return conn, nil
}

// ArtistCache stores BSON-encoded artist documents under artist:<id>.
// BSON keeps the password hash, which the JSON form drops.
type ArtistCache struct {
	Conn *redis.Client
	TTL  time.Duration
}

func NewArtistCache(conn *redis.Client, ttl time.Duration) *ArtistCache {
	return &ArtistCache{Conn: conn, TTL: ttl}
}

func (c *ArtistCache) Get(ctx context.Context, id string) (*models.Artist, error) {
	raw, err := c.Conn.Get(ctx, artistPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	var a models.Artist
	if err := bson.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode cached artist %s: %w", id, err)
	}
	return &a, nil
}

func (c *ArtistCache) Set(ctx context.Context, a *models.Artist) error {
	raw, err := bson.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode artist: %w", err)
	}
	return c.Conn.Set(ctx, artistPrefix+a.ID.Hex(), raw, c.TTL).Err()
}

func (c *ArtistCache) Del(ctx context.Context, id string) error {
	return c.Conn.Del(ctx, artistPrefix+id).Err()
}
