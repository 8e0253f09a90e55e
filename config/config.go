package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every process-wide setting. It is built once in main and
// handed to the components that need it.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	JWTSecret      []byte
	UploadDir      string
	PublicBaseURL  string
	MaxUploadBytes int64
	LoginPerMinute int
	CacheTTL       time.Duration
	LogLevel       string
	StoreBackend   string
}

var ErrMissingSecret = errors.New("config: MY_SECRET (or JWT_SECRET) must be set")

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Port:          get("PORT", ":8080"),
		MongoURI:      get("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       get("MONGO_DB", "bandhub"),
		RedisAddr:     get("REDIS_ADDR", ""),
		RedisPassword: get("REDIS_PASSWORD", ""),
		UploadDir:     get("UPLOAD_DIR", "./profile-pics"),
		PublicBaseURL: strings.TrimRight(get("PUBLIC_BASE_URL", "http://localhost:8000"), "/"),
		LogLevel:      get("LOG_LEVEL", "info"),
		StoreBackend:  get("STORE_BACKEND", "mongo"),
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}

	secret := get("MY_SECRET", get("JWT_SECRET", ""))
	if secret == "" {
		return Config{}, ErrMissingSecret
	}
	cfg.JWTSecret = []byte(secret)

	var err error
	if cfg.MaxUploadBytes, err = strconv.ParseInt(get("MAX_UPLOAD_BYTES", "10485760"), 10, 64); err != nil {
		return Config{}, fmt.Errorf("config: MAX_UPLOAD_BYTES: %w", err)
	}
	// 0 leaves login and the stand-alone upload unlimited.
	if cfg.LoginPerMinute, err = strconv.Atoi(get("LOGIN_RATE_PER_MIN", "0")); err != nil {
		return Config{}, fmt.Errorf("config: LOGIN_RATE_PER_MIN: %w", err)
	}
	if cfg.LoginPerMinute < 0 {
		return Config{}, fmt.Errorf("config: LOGIN_RATE_PER_MIN must not be negative, got %d", cfg.LoginPerMinute)
	}
	if cfg.CacheTTL, err = time.ParseDuration(get("CACHE_TTL", "10m")); err != nil {
		return Config{}, fmt.Errorf("config: CACHE_TTL: %w", err)
	}

	switch cfg.StoreBackend {
	case "mongo", "memory":
	default:
		return Config{}, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}
