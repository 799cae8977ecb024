package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/models"
)

// LikeHandler implements the like endpoints.
type LikeHandler struct {
	Likes LikeService
	Views ViewReader
}

// Toggle returns a handler toggling likes on target; the id is read from param.
func (h LikeHandler) Toggle(target models.LikeTarget, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, _ := currentUser(r)
		status, err := h.Likes.Toggle(r.Context(), actorID, target, chi.URLParam(r, param))
		if err != nil {
			respondError(w, r, err)
			return
		}
		message := string(target) + " unliked"
		if status.IsLiked {
			message = string(target) + " liked"
		}
		respond(r.Context(), w, http.StatusOK, status, message)
	}
}

// LikedVideos handles GET /likes/videos.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	videos, err := h.Views.LikedVideos(r.Context(), actorID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, videos, "liked videos fetched")
}

// SubscriptionHandler implements the subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionService
	Views         ViewReader
}

// Toggle handles POST /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	status, err := h.Subscriptions.Toggle(r.Context(), actorID, chi.URLParam(r, "channelId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	message := "unsubscribed"
	if status.IsSubscribed {
		message = "subscribed"
	}
	respond(r.Context(), w, http.StatusOK, status, message)
}

// Subscribers handles GET /subscriptions/c/{channelId}.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	subscribers, err := h.Views.Subscribers(r.Context(), chi.URLParam(r, "channelId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, subscribers, "subscribers fetched")
}

// Channels handles GET /subscriptions/u/{subscriberId}.
func (h SubscriptionHandler) Channels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.Views.SubscribedChannels(r.Context(), chi.URLParam(r, "subscriberId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, channels, "subscribed channels fetched")
}

// DashboardHandler implements the channel dashboard endpoints.
type DashboardHandler struct {
	Views ViewReader
}

// Stats handles GET /dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := currentUser(r)
	stats, err := h.Views.DashboardStats(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, stats, "channel stats fetched")
}

// Videos handles GET /dashboard/videos.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := currentUser(r)
	videos, err := h.Views.ChannelVideos(r.Context(), ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, videos, "channel videos fetched")
}
