package handlers

import (
	"net/http"

	"github.com/viewtube/backend/internal/middleware"
	"github.com/viewtube/backend/internal/models"
)

// LikeHandler implements the like toggles and liked-video listing.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore
	Catalog  Catalog
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}
	h.toggle(w, r, models.LikeTarget{Kind: models.LikeKindVideo, ID: videoID}, func() error {
		_, err := h.Videos.FindByID(r.Context(), videoID)
		return err
	})
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}
	h.toggle(w, r, models.LikeTarget{Kind: models.LikeKindComment, ID: commentID}, func() error {
		_, err := h.Comments.FindByID(r.Context(), commentID)
		return err
	})
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	tweetID, ok := pathID(w, r, "tweetId")
	if !ok {
		return
	}
	h.toggle(w, r, models.LikeTarget{Kind: models.LikeKindTweet, ID: tweetID}, func() error {
		_, err := h.Tweets.FindByID(r.Context(), tweetID)
		return err
	})
}

// LikedVideos handles GET /api/v1/likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	videos, err := h.Catalog.LikedVideos(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found", "failed to list liked videos")
		return
	}

	respond(ctx, w, http.StatusOK, "liked videos", videos)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget, exists func() error) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	if err := exists(); err != nil {
		respondStoreError(ctx, w, err, string(target.Kind)+" not found", "failed to load like target")
		return
	}

	liked, err := h.Likes.Toggle(ctx, target, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, string(target.Kind)+" not found", "failed to toggle like")
		return
	}

	respond(ctx, w, http.StatusOK, "like toggled", map[string]any{"isLiked": liked})
}
