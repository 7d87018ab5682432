package models

import "time"

// MediaAsset references an object stored on the media host. Key is the
// deletion handle understood by the blob store.
type MediaAsset struct {
	URL string `json:"url"`
	Key string `json:"-"`
}

// User represents an account on the ViewTube platform. Username and email
// are stored lowercase and are unique at the repository boundary.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	Password     string     `json:"-"`
	Avatar       MediaAsset `json:"avatar"`
	CoverImage   MediaAsset `json:"coverImage"`
	RefreshToken string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Video is an uploaded video together with its playback metadata.
type Video struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	VideoFile   MediaAsset `json:"videoFile"`
	Thumbnail   MediaAsset `json:"thumbnail"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Views       int64      `json:"views"`
	Duration    float64    `json:"duration"`
	Published   bool       `json:"isPublished"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Comment is a user comment attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short free-standing post by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeKind discriminates the target of a like.
type LikeKind string

const (
	LikeKindVideo   LikeKind = "video"
	LikeKindComment LikeKind = "comment"
	LikeKindTweet   LikeKind = "tweet"
)

// Valid reports whether the kind is one of the known target kinds.
func (k LikeKind) Valid() bool {
	switch k {
	case LikeKindVideo, LikeKindComment, LikeKindTweet:
		return true
	}
	return false
}

// LikeTarget identifies exactly one likeable entity as a tagged pair.
type LikeTarget struct {
	Kind LikeKind `json:"kind"`
	ID   string   `json:"id"`
}

// Like records that a user liked a single target. At most one like exists
// per (user, target) pair; the schema enforces this with a unique index.
type Like struct {
	ID        string     `json:"id"`
	Target    LikeTarget `json:"target"`
	LikedBy   string     `json:"likedBy"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Playlist is an ordered, duplicate-free collection of videos owned by a user.
type Playlist struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	VideoIDs    []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Subscription is a directed edge from a subscriber to a channel (both
// users). At most one edge exists per ordered pair.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TokenPair groups the bearer credentials issued at login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
