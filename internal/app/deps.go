package app

import (
	"github.com/viewtube/backend/internal/auth"
	"github.com/viewtube/backend/internal/config"
	"github.com/viewtube/backend/internal/db"
	"github.com/viewtube/backend/internal/handlers"
	"github.com/viewtube/backend/internal/middleware"
	"github.com/viewtube/backend/internal/repositories"
	"github.com/viewtube/backend/internal/views"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(pool db.Pool, cfg config.Config, media handlers.MediaStore) handlers.Dependencies {
	users := repositories.NewPostgresUserRepository(pool)
	tokens := auth.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	return handlers.Dependencies{
		Users:         users,
		Tokens:        tokens,
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Media:         media,
		Catalog:       views.New(pool),
		Auth:          middleware.NewAuthenticator(tokens, users),
		AuthLimiter: middleware.NewIPRateLimiter(cfg.AuthRateLimit.Requests,
			cfg.AuthRateLimit.Window, cfg.AuthRateLimit.Burst, cfg.AuthRateLimit.TTL),
		UploadTempDir: cfg.UploadTempDir,
		MaxUploadSize: cfg.MaxUploadSize,
	}
}
