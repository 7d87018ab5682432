// Package views implements the read side of the API: listing, search, and
// cross-entity joins that enrich records with owner and engagement data.
// Write paths live in the repositories package.
package views

import (
	"time"

	"github.com/viewtube/backend/internal/db"
	"github.com/viewtube/backend/internal/models"
)

// Views executes read-only queries against PostgreSQL.
type Views struct {
	pool db.Pool
}

// New constructs the read-side query layer.
func New(pool db.Pool) *Views {
	return &Views{pool: pool}
}

// PageMeta describes one page of a paginated result set.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

func newPageMeta(page, limit int, total int64) PageMeta {
	meta := PageMeta{Page: page, Limit: limit, TotalCount: total}
	if limit > 0 {
		meta.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return meta
}

// UserSummary is the owner projection embedded in enriched listings.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// VideoWithOwner is a video joined with its owner's public profile.
type VideoWithOwner struct {
	models.Video
	Owner UserSummary `json:"owner"`
}

// VideoDetail is a single video enriched with engagement counters for the
// requesting viewer.
type VideoDetail struct {
	models.Video
	Owner      UserSummary `json:"owner"`
	LikesCount int64       `json:"likesCount"`
	IsLiked    bool        `json:"isLiked"`
}

// CommentWithOwner is a comment joined with its author and like counters.
type CommentWithOwner struct {
	models.Comment
	Owner      UserSummary `json:"owner"`
	LikesCount int64       `json:"likesCount"`
	IsLiked    bool        `json:"isLiked"`
}

// TweetWithOwner is a tweet joined with its author and like counters.
type TweetWithOwner struct {
	models.Tweet
	Owner      UserSummary `json:"owner"`
	LikesCount int64       `json:"likesCount"`
	IsLiked    bool        `json:"isLiked"`
}

// ChannelProfile is a user's public channel page with subscription counters
// relative to the requesting viewer.
type ChannelProfile struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	FullName          string    `json:"fullName"`
	Avatar            string    `json:"avatar"`
	CoverImage        string    `json:"coverImage"`
	SubscribersCount  int64     `json:"subscribersCount"`
	SubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed      bool      `json:"isSubscribed"`
	CreatedAt         time.Time `json:"createdAt"`
}

// PlaylistDetail is a playlist with its member videos in playlist order.
type PlaylistDetail struct {
	models.Playlist
	Videos []VideoWithOwner `json:"videos"`
}

// ChannelStats aggregates a channel's dashboard counters.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}
