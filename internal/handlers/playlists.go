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

// PlaylistHandler implements playlist CRUD and membership endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Catalog   Catalog
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/v1/playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "owner not found", "failed to create playlist")
		return
	}

	respond(ctx, w, http.StatusCreated, "playlist created", playlist)
}

// Get handles GET /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}

	detail, err := h.Catalog.PlaylistByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to load playlist")
		return
	}

	respond(ctx, w, http.StatusOK, "playlist", detail)
}

// ListForUser handles GET /api/v1/playlist/user/{userId}.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlists not found", "failed to list playlists")
		return
	}

	respond(ctx, w, http.StatusOK, "playlists", playlists)
}

// Update handles PATCH /api/v1/playlist/{playlistId}. Only the owner may
// update.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to load playlist")
		return
	}
	if playlist.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may update this playlist")
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	updated, err := h.Playlists.Update(ctx, playlistID, req.Name, strings.TrimSpace(req.Description))
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to update playlist")
		return
	}

	respond(ctx, w, http.StatusOK, "playlist updated", updated)
}

// Delete handles DELETE /api/v1/playlist/{playlistId}. Only the owner may
// delete.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to load playlist")
		return
	}
	if playlist.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may delete this playlist")
		return
	}

	if err := h.Playlists.Delete(ctx, playlistID); err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to delete playlist")
		return
	}

	respond(ctx, w, http.StatusOK, "playlist deleted", nil)
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId}.
// Adding an already-present video is a no-op.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to load playlist")
		return
	}
	if playlist.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this playlist")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to load video")
		return
	}

	added, err := h.Playlists.AddVideo(ctx, playlistID, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist or video not found", "failed to add video to playlist")
		return
	}

	respond(ctx, w, http.StatusOK, "video added to playlist", map[string]any{"added": added})
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	playlistID, ok := pathID(w, r, "playlistId")
	if !ok {
		return
	}
	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found", "failed to load playlist")
		return
	}
	if playlist.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may modify this playlist")
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlistID, videoID); err != nil {
		respondStoreError(ctx, w, err, "video is not in the playlist", "failed to remove video from playlist")
		return
	}

	respond(ctx, w, http.StatusOK, "video removed from playlist", nil)
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
