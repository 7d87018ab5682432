package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/logging"
	"github.com/viewtube/backend/internal/middleware"
	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/views"
)

// VideoHandler implements the video catalogue and lifecycle endpoints.
type VideoHandler struct {
	Videos        VideoStore
	Users         UserStore
	Media         MediaStore
	Catalog       Catalog
	UploadTempDir string
	MaxUploadSize int64
	NowFunc       func() time.Time
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// List handles GET /api/v1/videos with query, sortBy, sortType, userId,
// page, and limit query parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	items, meta, err := h.Catalog.ListVideos(ctx, views.ListVideosOptions{
		Query:     strings.TrimSpace(q.Get("query")),
		OwnerID:   strings.TrimSpace(q.Get("userId")),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortType"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found", "failed to list videos")
		return
	}

	respond(ctx, w, http.StatusOK, "videos", map[string]any{
		"videos": items,
		"meta":   meta,
	})
}

// Publish handles POST /api/v1/videos: a multipart payload with title,
// description, and duration fields plus videoFile and thumbnail files.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	user, _ := middleware.UserFrom(ctx)

	if !parseMultipart(w, r, h.MaxUploadSize) {
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "title and description are required")
		return
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("duration")), 64)
	if err != nil || duration < 0 {
		duration = 0
	}

	videoPath, err := stageUpload(r, "videoFile", h.UploadTempDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "videoFile is required")
			return
		}
		logger.Error("publish failed to stage video", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process video upload")
		return
	}

	thumbPath, err := stageUpload(r, "thumbnail", h.UploadTempDir)
	if err != nil {
		if errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "thumbnail is required")
			return
		}
		logger.Error("publish failed to stage thumbnail", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to process thumbnail upload")
		return
	}

	videoAsset, err := h.Media.Store(ctx, videoPath, "videos")
	if err != nil {
		logger.Error("publish failed to upload video", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to store video")
		return
	}

	thumbAsset, err := h.Media.Store(ctx, thumbPath, "thumbnails")
	if err != nil {
		logger.Error("publish failed to upload thumbnail", "error", err)
		h.Media.Remove(ctx, videoAsset.Key, "video")
		respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     user.ID,
		VideoFile:   videoAsset,
		Thumbnail:   thumbAsset,
		Title:       title,
		Description: description,
		Duration:    duration,
		Published:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		h.Media.Remove(ctx, videoAsset.Key, "video")
		h.Media.Remove(ctx, thumbAsset.Key, "thumbnail")
		respondStoreError(ctx, w, err, "owner not found", "failed to publish video")
		return
	}

	respond(ctx, w, http.StatusCreated, "video published", video)
}

// Get handles GET /api/v1/videos/{videoId}. A successful fetch counts a view
// and records the video in the viewer's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	viewer, _ := middleware.UserFrom(ctx)

	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	detail, err := h.Catalog.VideoByID(ctx, videoID, viewer.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to load video")
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("failed to count view", "error", err, "videoId", videoID)
	} else {
		detail.Views++
	}
	if err := h.Users.AddWatchHistory(ctx, viewer.ID, videoID); err != nil {
		logger.Warn("failed to record watch history", "error", err, "videoId", videoID)
	}

	respond(ctx, w, http.StatusOK, "video", detail)
}

// Update handles PATCH /api/v1/videos/{videoId}. JSON payloads update title
// and description; multipart payloads may additionally replace the thumbnail.
// Only the owner may update a video.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	user, _ := middleware.UserFrom(ctx)

	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to load video")
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may update this video")
		return
	}

	var (
		title       *string
		description *string
		thumbnail   *models.MediaAsset
		oldThumbKey string
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if !parseMultipart(w, r, h.MaxUploadSize) {
			return
		}
		if v := strings.TrimSpace(r.FormValue("title")); v != "" {
			title = &v
		}
		if v := strings.TrimSpace(r.FormValue("description")); v != "" {
			description = &v
		}

		thumbPath, err := stageUpload(r, "thumbnail", h.UploadTempDir)
		switch {
		case err == nil:
			asset, err := h.Media.Store(ctx, thumbPath, "thumbnails")
			if err != nil {
				logger.Error("update failed to upload thumbnail", "error", err)
				respondError(ctx, w, http.StatusInternalServerError, "failed to store thumbnail")
				return
			}
			thumbnail = &asset
			oldThumbKey = video.Thumbnail.Key
		case errors.Is(err, errMissingFile):
		default:
			logger.Error("update failed to stage thumbnail", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "failed to process thumbnail upload")
			return
		}
	} else {
		var req updateVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "invalid request body")
			return
		}
		title = req.Title
		description = req.Description
	}

	if title == nil && description == nil && thumbnail == nil {
		respondError(ctx, w, http.StatusBadRequest, "nothing to update")
		return
	}

	updated, err := h.Videos.UpdateDetails(ctx, videoID, title, description, thumbnail)
	if err != nil {
		if thumbnail != nil {
			h.Media.Remove(ctx, thumbnail.Key, "thumbnail")
		}
		respondStoreError(ctx, w, err, "video not found", "failed to update video")
		return
	}

	if oldThumbKey != "" {
		h.Media.Remove(ctx, oldThumbKey, "thumbnail")
	}

	respond(ctx, w, http.StatusOK, "video updated", updated)
}

// Delete handles DELETE /api/v1/videos/{videoId}. Only the owner may delete;
// the stored blobs are removed best-effort afterwards.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to load video")
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may delete this video")
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to delete video")
		return
	}

	h.Media.Remove(ctx, video.VideoFile.Key, "video")
	h.Media.Remove(ctx, video.Thumbnail.Key, "thumbnail")

	respond(ctx, w, http.StatusOK, "video deleted", nil)
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	videoID, ok := pathID(w, r, "videoId")
	if !ok {
		return
	}

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to load video")
		return
	}
	if video.OwnerID != user.ID {
		respondError(ctx, w, http.StatusForbidden, "only the owner may publish this video")
		return
	}

	if err := h.Videos.SetPublished(ctx, videoID, !video.Published); err != nil {
		respondStoreError(ctx, w, err, "video not found", "failed to toggle publish state")
		return
	}

	video.Published = !video.Published
	respond(ctx, w, http.StatusOK, "publish state toggled", video)
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
