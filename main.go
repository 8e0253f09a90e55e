package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bandhub/artists"
	"bandhub/auth"
	"bandhub/config"
	"bandhub/db"
	"bandhub/filemgr"
	"bandhub/middleware"
	"bandhub/mq"
	"bandhub/ratelim"
	"bandhub/rdx"
	"bandhub/routes"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Str("service", "bandhub").Logger()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := newLogger("info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store artists.Store
	var database *db.DB
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn().Msg("using in-memory store; data is lost on exit")
		store = artists.NewMemStore()
	default:
		database, err = db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect database")
		}
		store = artists.NewMongoStore(database.ArtistsCollection)
		logger.Info().Str("db", cfg.MongoDB).Msg("connected to MongoDB")
	}

	var events artists.Emitter = mq.Nop{}
	var redisConn *redis.Client
	if cfg.RedisAddr != "" {
		redisConn, err = rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect redis")
		}
		store = artists.NewCachedStore(store, rdx.NewArtistCache(redisConn, cfg.CacheTTL), logger)
		events = mq.NewPublisher(redisConn, logger)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("redis cache and events enabled")
	}

	h := &artists.Handler{
		Store:  store,
		Tokens: auth.NewTokenManager(cfg.JWTSecret),
		Uploads: &filemgr.Uploader{
			Dir:      cfg.UploadDir,
			URLPath:  routes.UploadsPath,
			MaxBytes: cfg.MaxUploadBytes,
			Logger:   logger,
		},
		Events:        events,
		Logger:        logger,
		PublicBaseURL: cfg.PublicBaseURL,
	}

	rateLimiter := ratelim.NewRateLimiter(cfg.LoginPerMinute, 5)
	if rateLimiter.Enabled() {
		logger.Info().Int("per_minute", cfg.LoginPerMinute).Msg("login and upload rate limiting enabled")
	}
	router := routes.RoutesWrapper(h, rateLimiter, cfg.UploadDir)

	// apply middleware: logging → security headers → CORS → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	handler := middleware.Logging(logger)(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		if redisConn != nil {
			if err := redisConn.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}
	})

	go func() {
		logger.Info().Str("addr", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received; shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if database != nil {
		if err := database.Close(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("disconnect MongoDB")
		}
	}
	logger.Info().Msg("server stopped cleanly")
}
