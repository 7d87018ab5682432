package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/middleware"
	"github.com/viewtube/backend/internal/models"
)

// TweetHandler implements the short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Catalog Catalog
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   user.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "owner not found", "failed to create tweet")
		return
	}

	respond(ctx, w, http.StatusCreated, "tweet created", tweet)
}

// ListForUser handles GET /api/v1/tweets/user/{userId}.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := middleware.UserFrom(ctx)

	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	tweets, err := h.Catalog.TweetsByUser(ctx, userID, viewer.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "tweets not found", "failed to list tweets")
		return
	}

	respond(ctx, w, http.StatusOK, "tweets", tweets)
}

// Update handles PATCH /api/v1/tweets/{tweetId}. Only the author may edit.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	tweetID, ok := pathID(w, r, "tweetId")
	if !ok {
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to load tweet")
		return
	}
	if tweet.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the author may edit this tweet")
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	updated, err := h.Tweets.UpdateContent(ctx, tweetID, req.Content)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to update tweet")
		return
	}

	respond(ctx, w, http.StatusOK, "tweet updated", updated)
}

// Delete handles DELETE /api/v1/tweets/{tweetId}. Only the author may delete.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	tweetID, ok := pathID(w, r, "tweetId")
	if !ok {
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to load tweet")
		return
	}
	if tweet.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the author may delete this tweet")
		return
	}

	if err := h.Tweets.Delete(ctx, tweetID); err != nil {
		respondStoreError(ctx, w, err, "tweet not found", "failed to delete tweet")
		return
	}

	respond(ctx, w, http.StatusOK, "tweet deleted", nil)
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
