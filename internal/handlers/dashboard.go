package handlers

import (
	"net/http"

	"github.com/viewtube/backend/internal/middleware"
)

// DashboardHandler implements the channel owner's dashboard endpoints.
type DashboardHandler struct {
	Catalog Catalog
}

// Stats handles GET /api/v1/dashboard/stats for the authenticated channel.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	stats, err := h.Catalog.StatsForChannel(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to load channel stats")
		return
	}

	respond(ctx, w, http.StatusOK, "channel stats", stats)
}

// Videos handles GET /api/v1/dashboard/videos: every video the channel owns,
// published or not.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	videos, err := h.Catalog.ChannelVideos(ctx, user.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to list channel videos")
		return
	}

	respond(ctx, w, http.StatusOK, "channel videos", videos)
}
