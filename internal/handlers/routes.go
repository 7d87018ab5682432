package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viewtube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Tokens        TokenIssuer
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Playlists     PlaylistStore
	Subscriptions SubscriptionStore
	Media         MediaStore
	Catalog       Catalog
	Auth          *middleware.Authenticator
	AuthLimiter   RateLimiter
	UploadTempDir string
	MaxUploadSize int64
}

// NewRouter wires every API route onto a chi router. Session endpoints are
// public; the rest of the API sits behind the auth guard.
func NewRouter(deps Dependencies) http.Handler {
	users := UserHandler{
		Users:         deps.Users,
		Tokens:        deps.Tokens,
		Media:         deps.Media,
		Catalog:       deps.Catalog,
		AuthLimiter:   deps.AuthLimiter,
		UploadTempDir: deps.UploadTempDir,
		MaxUploadSize: deps.MaxUploadSize,
	}
	videos := VideoHandler{
		Videos:        deps.Videos,
		Users:         deps.Users,
		Media:         deps.Media,
		Catalog:       deps.Catalog,
		UploadTempDir: deps.UploadTempDir,
		MaxUploadSize: deps.MaxUploadSize,
	}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Catalog: deps.Catalog}
	likes := LikeHandler{Likes: deps.Likes, Videos: deps.Videos, Comments: deps.Comments, Tweets: deps.Tweets, Catalog: deps.Catalog}
	tweets := TweetHandler{Tweets: deps.Tweets, Catalog: deps.Catalog}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Catalog: deps.Catalog}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Users: deps.Users, Catalog: deps.Catalog}
	dashboard := DashboardHandler{Catalog: deps.Catalog}
	health := HealthHandler{}

	r := chi.NewRouter()

	r.Get("/healthz", health.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", users.Register)
			r.Post("/login", users.Login)
			r.Get("/refresh-token", users.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(deps.Auth.Require)
				r.Patch("/logout", users.Logout)
				r.Get("/current-user", users.CurrentUser)
				r.Post("/change-password", users.ChangePassword)
				r.Patch("/update-account", users.UpdateAccount)
				r.Patch("/avatar", users.UpdateAvatar)
				r.Patch("/cover-image", users.UpdateCoverImage)
				r.Get("/c/{username}", users.ChannelProfile)
				r.Get("/history", users.WatchHistory)
			})
		})

		r.Route("/videos", func(r chi.Router) {
			// The catalogue listing is the one public read; everything
			// else under /videos requires a session.
			r.Get("/", videos.List)

			r.Group(func(r chi.Router) {
				r.Use(deps.Auth.Require)
				r.Post("/", videos.Publish)
				r.Get("/{videoId}", videos.Get)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/toggle/publish/{videoId}", videos.TogglePublish)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Require)

			r.Route("/comments", func(r chi.Router) {
				r.Get("/{videoId}", comments.ListForVideo)
				r.Post("/{videoId}", comments.Create)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/toggle/v/{videoId}", likes.ToggleVideo)
				r.Post("/toggle/c/{commentId}", likes.ToggleComment)
				r.Post("/toggle/t/{tweetId}", likes.ToggleTweet)
				r.Get("/videos", likes.LikedVideos)
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Post("/", tweets.Create)
				r.Get("/user/{userId}", tweets.ListForUser)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})

			r.Route("/playlist", func(r chi.Router) {
				r.Post("/", playlists.Create)
				r.Get("/{playlistId}", playlists.Get)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
				r.Get("/user/{userId}", playlists.ListForUser)
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/c/{channelId}", subscriptions.Toggle)
				r.Get("/c/{channelId}", subscriptions.Subscribers)
				r.Get("/u/{subscriberId}", subscriptions.SubscribedChannels)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboard.Stats)
				r.Get("/videos", dashboard.Videos)
			})
		})
	})

	return r
}
