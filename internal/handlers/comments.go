package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/middleware"
	"github.com/viewtube/backend/internal/models"
)

// CommentHandler implements comment CRUD under a video.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Catalog  Catalog
	NowFunc  func() time.Time
}

type commentRequest struct {
	Content string `json:"content"`
}

// ListForVideo handles GET /api/v1/comments/{videoId} with page and limit
// parameters.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := middleware.UserFrom(ctx)

	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to load video")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	comments, meta, err := h.Catalog.CommentsForVideo(ctx, videoID, viewer.ID, page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "comments not found", "failed to list comments")
		return
	}

	respond(ctx, w, http.StatusOK, "comments", map[string]any{
		"comments": comments,
		"meta":     meta,
	})
}

// Create handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to load video")
		return
	}

	var req commentRequest
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
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   user.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to create comment")
		return
	}

	respond(ctx, w, http.StatusCreated, "comment added", comment)
}

// Update handles PATCH /api/v1/comments/c/{commentId}. Only the author may
// edit their comment.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to load comment")
		return
	}
	if comment.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the author may edit this comment")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	updated, err := h.Comments.UpdateContent(ctx, commentID, req.Content)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to update comment")
		return
	}

	respond(ctx, w, http.StatusOK, "comment updated", updated)
}

// Delete handles DELETE /api/v1/comments/c/{commentId}. The author of the
// comment or the owner of the video may delete it.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	commentID, ok := pathID(w, r, "commentId")
	if !ok {
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to load comment")
		return
	}

	if comment.OwnerID != user.ID {
		video, err := h.Videos.FindByID(ctx, comment.VideoID)
		if err != nil || video.OwnerID != user.ID {
			respondError(ctx, w, http.StatusForbidden, "only the author or video owner may delete this comment")
			return
		}
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondStoreError(ctx, w, err, "comment not found", "failed to delete comment")
		return
	}

	respond(ctx, w, http.StatusOK, "comment deleted", nil)
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
