package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/query"
	"github.com/vidtube/backend/internal/services"
)

// CommentHandler implements the comment endpoints.
type CommentHandler struct {
	Comments CommentService
	Views    ViewReader
}

// List handles GET /comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := query.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	comments, err := h.Views.CommentFeed(r.Context(), chi.URLParam(r, "videoId"), page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, comments, "comments fetched")
}

// Add handles POST /comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in services.CommentInput
	if err := decodeJSON(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	actorID, _ := currentUser(r)
	comment, err := h.Comments.Add(r.Context(), actorID, chi.URLParam(r, "videoId"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusCreated, comment, "comment added")
}

// Update handles PATCH /comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.CommentInput
	if err := decodeJSON(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	actorID, _ := currentUser(r)
	comment, err := h.Comments.Update(r.Context(), actorID, chi.URLParam(r, "commentId"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, comment, "comment updated")
}

// Delete handles DELETE /comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	if err := h.Comments.Delete(r.Context(), actorID, chi.URLParam(r, "commentId")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, struct{}{}, "comment deleted")
}

// PlaylistHandler implements the playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistService
	Views     ViewReader
}

// Create handles POST /playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.PlaylistInput
	if err := decodeJSON(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	actorID, _ := currentUser(r)
	playlist, err := h.Playlists.Create(r.Context(), actorID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusCreated, playlist, "playlist created")
}

// Get handles GET /playlists/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.Views.PlaylistView(r.Context(), chi.URLParam(r, "playlistId"), viewerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, playlist, "playlist fetched")
}

// ListByUser handles GET /playlists/user/{userId}.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.Views.OwnerPlaylists(r.Context(), chi.URLParam(r, "userId"), viewerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, playlists, "playlists fetched")
}

// Update handles PATCH /playlists/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.UpdatePlaylistInput
	if err := decodeJSON(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	actorID, _ := currentUser(r)
	playlist, err := h.Playlists.Update(r.Context(), actorID, chi.URLParam(r, "playlistId"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, playlist, "playlist updated")
}

// Delete handles DELETE /playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	if err := h.Playlists.Delete(r.Context(), actorID, chi.URLParam(r, "playlistId")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, struct{}{}, "playlist deleted")
}

// AddVideo handles PATCH /playlists/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	playlist, err := h.Playlists.AddVideo(r.Context(), actorID, chi.URLParam(r, "videoId"), chi.URLParam(r, "playlistId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, playlist, "video added to playlist")
}

// RemoveVideo handles PATCH /playlists/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	playlist, err := h.Playlists.RemoveVideo(r.Context(), actorID, chi.URLParam(r, "videoId"), chi.URLParam(r, "playlistId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, playlist, "video removed from playlist")
}

// TweetHandler implements the tweet endpoints.
type TweetHandler struct {
	Tweets TweetService
	Views  ViewReader
}

// Create handles POST /tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.TweetInput
	if err := decodeJSON(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	actorID, _ := currentUser(r)
	tweet, err := h.Tweets.Create(r.Context(), actorID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusCreated, tweet, "tweet created")
}

// ListByUser handles GET /tweets/user/{userId}.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.Views.Tweets(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, tweets, "tweets fetched")
}

// Update handles PATCH /tweets/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.TweetInput
	if err := decodeJSON(r, &in, false); err != nil {
		respondError(w, r, err)
		return
	}
	actorID, _ := currentUser(r)
	tweet, err := h.Tweets.Update(r.Context(), actorID, chi.URLParam(r, "tweetId"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, tweet, "tweet updated")
}

// Delete handles DELETE /tweets/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	if err := h.Tweets.Delete(r.Context(), actorID, chi.URLParam(r, "tweetId")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, struct{}{}, "tweet deleted")
}
