package handlers

import (
	"context"

	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/views"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, fullName, email *string) (models.User, error)
	UpdateAvatar(ctx context.Context, id string, avatar models.MediaAsset) (models.User, error)
	UpdateCoverImage(ctx context.Context, id string, cover models.MediaAsset) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetRefreshToken(ctx context.Context, id, refreshToken string) error
	ClearRefreshToken(ctx context.Context, id string) error
	AddWatchHistory(ctx context.Context, userID, videoID string) error
}

// TokenIssuer mints and validates the bearer credential pair.
type TokenIssuer interface {
	Issue(user models.User) (models.TokenPair, error)
	VerifyRefresh(token string) (string, error)
}

// VideoStore captures persistence for video records.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	UpdateDetails(ctx context.Context, id string, title, description *string, thumbnail *models.MediaAsset) (models.Video, error)
	Delete(ctx context.Context, id string) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
}

// CommentStore captures persistence for comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// LikeStore toggles like edges.
type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, userID string) (bool, error)
}

// PlaylistStore captures persistence for playlists.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (models.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) (bool, error)
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// SubscriptionStore toggles subscription edges.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// MediaStore persists uploaded files on the blob host. Store always consumes
// the staged local file. Remove is best-effort cleanup.
type MediaStore interface {
	Store(ctx context.Context, localPath, folder string) (models.MediaAsset, error)
	Remove(ctx context.Context, key, kind string)
}

// Catalog is the read side: listings, search, and cross-entity joins.
type Catalog interface {
	ListVideos(ctx context.Context, opts views.ListVideosOptions) ([]views.VideoWithOwner, views.PageMeta, error)
	VideoByID(ctx context.Context, id, viewerID string) (views.VideoDetail, error)
	WatchHistory(ctx context.Context, userID string) ([]views.VideoWithOwner, error)
	LikedVideos(ctx context.Context, userID string) ([]views.VideoWithOwner, error)
	ChannelVideos(ctx context.Context, channelID string) ([]views.VideoWithOwner, error)
	ChannelProfileByUsername(ctx context.Context, username, viewerID string) (views.ChannelProfile, error)
	ChannelSubscribers(ctx context.Context, channelID string) ([]views.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]views.UserSummary, error)
	CommentsForVideo(ctx context.Context, videoID, viewerID string, page, limit int) ([]views.CommentWithOwner, views.PageMeta, error)
	TweetsByUser(ctx context.Context, ownerID, viewerID string) ([]views.TweetWithOwner, error)
	PlaylistByID(ctx context.Context, id string) (views.PlaylistDetail, error)
	StatsForChannel(ctx context.Context, channelID string) (views.ChannelStats, error)
}
