package handlers

import (
	"net/http"

	"github.com/viewtube/backend/internal/middleware"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore
	Catalog       Catalog
}

// Toggle handles POST /api/v1/subscriptions/c/{channelId}. A user cannot
// subscribe to their own channel.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := middleware.UserFrom(ctx)

	channelID, ok := pathID(w, r, "channelId")
	if !ok {
		return
	}
	if channelID == user.ID {
		respondError(ctx, w, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to load channel")
		return
	}

	subscribed, err := h.Subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to toggle subscription")
		return
	}

	respond(ctx, w, http.StatusOK, "subscription toggled", map[string]any{"isSubscribed": subscribed})
}

// Subscribers handles GET /api/v1/subscriptions/c/{channelId}: the users
// subscribed to a channel.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID, ok := pathID(w, r, "channelId")
	if !ok {
		return
	}
	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to load channel")
		return
	}

	subscribers, err := h.Catalog.ChannelSubscribers(ctx, channelID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found", "failed to list subscribers")
		return
	}

	respond(ctx, w, http.StatusOK, "channel subscribers", subscribers)
}

// SubscribedChannels handles GET /api/v1/subscriptions/u/{subscriberId}:
// the channels a user subscribes to.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID, ok := pathID(w, r, "subscriberId")
	if !ok {
		return
	}
	if _, err := h.Users.FindByID(ctx, subscriberID); err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to load user")
		return
	}

	channels, err := h.Catalog.SubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found", "failed to list subscribed channels")
		return
	}

	respond(ctx, w, http.StatusOK, "subscribed channels", channels)
}
