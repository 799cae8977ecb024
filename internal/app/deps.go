package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/services"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/views"
)

// buildStore selects the persistence driver. pool is only consulted for postgres.
func buildStore(cfg config.Config, pool *pgxpool.Pool) (repositories.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return repositories.NewMemoryStore().Repositories(), nil
	case config.StorePostgres:
		if pool == nil {
			return repositories.Store{}, fmt.Errorf("postgres store requires a connection pool")
		}
		return repositories.NewPostgresStore(pool), nil
	default:
		return repositories.Store{}, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// buildBackend returns the media object store and, for the local backend, the directory the
// router serves under /media.
func buildBackend(ctx context.Context, cfg config.Config) (storage.Backend, string, error) {
	switch cfg.Media.Backend {
	case config.MediaS3:
		backend, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
		if err != nil {
			return nil, "", err
		}
		return backend, "", nil
	case config.MediaLocal:
		backend, err := storage.NewLocalStorage(cfg.Media.UploadDir, cfg.Media.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return backend, backend.Root(), nil
	default:
		return nil, "", fmt.Errorf("unsupported media backend %q", cfg.Media.Backend)
	}
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
// database may be nil when the memory store is selected.
func buildDependencies(ctx context.Context, cfg config.Config, store repositories.Store, database handlers.HealthChecker, logger *zap.Logger) (handlers.Dependencies, error) {
	backend, mediaDir, err := buildBackend(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	delegate := media.NewUploader(backend, media.NewFFProbe(cfg.Media.FFProbePath, cfg.Media.Timeout), media.UploaderConfig{
		Timeout:    cfg.Media.Timeout,
		MaxRetries: cfg.Media.MaxRetries,
		RetryDelay: cfg.Media.RetryDelay,
	})

	tokens := auth.NewManager(auth.Config{
		AccessSecret:  cfg.Auth.AccessTokenSecret,
		AccessTTL:     cfg.Auth.AccessTokenTTL,
		RefreshSecret: cfg.Auth.RefreshTokenSecret,
		RefreshTTL:    cfg.Auth.RefreshTokenTTL,
	}, store.Users)

	composer := views.NewComposer(store)

	deps := handlers.Dependencies{
		Logger: logger,

		Accounts:      services.NewUserService(store.Users, tokens, delegate),
		Videos:        services.NewVideoService(store.Videos, store.Users, delegate, composer),
		Comments:      services.NewCommentService(store.Comments, store.Videos, composer),
		Playlists:     services.NewPlaylistService(store.Playlists, store.Videos, composer),
		Likes:         services.NewLikeService(store.Likes, store.Videos, store.Comments, store.Tweets),
		Subscriptions: services.NewSubscriptionService(store.Subscriptions, store.Users),
		Tweets:        services.NewTweetService(store.Tweets, composer),
		Views:         composer,

		Tokens: tokens,
		Users:  store.Users,
		AuthLimit: middleware.NewIPRateLimiter(
			cfg.HTTP.AuthRateRequests, cfg.HTTP.AuthRateWindow, cfg.HTTP.AuthRateBurst, 10*cfg.HTTP.AuthRateWindow,
		),
		Database: database,

		Uploads:      handlers.Uploads{TempDir: cfg.Media.TempDir, MaxBytes: cfg.Media.MaxUploadBytes},
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		SecureCookie: cfg.HTTP.CookieSecure,
		MediaDir:     mediaDir,
	}
	return deps, nil
}
