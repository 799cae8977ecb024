package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/query"
	"github.com/vidtube/backend/internal/services"
)

// VideoHandler implements video upload, search and management endpoints.
type VideoHandler struct {
	Videos  VideoService
	Views   ViewReader
	Uploads Uploads
}

// Search handles GET /videos.
func (h VideoHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := query.ParsePage(q.Get("page"), q.Get("limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	sort, err := query.ParseSort(q.Get("sortBy"), q.Get("sortType"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	videos, err := h.Views.VideoSearch(r.Context(), query.VideoFilter{
		Text:     strings.TrimSpace(q.Get("query")),
		OwnerID:  strings.TrimSpace(q.Get("userId")),
		ViewerID: viewerID(r),
		Sort:     sort,
		Page:     page,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, videos, "videos fetched")
}

// Publish handles POST /videos.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	f, err := h.Uploads.parse(w, r, "videoFile", "thumbnail")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer f.cleanup(r)

	ownerID, _ := currentUser(r)
	video, err := h.Videos.Publish(r.Context(), ownerID, services.PublishVideoInput{
		Title:         f.value("title"),
		Description:   f.value("description"),
		VideoPath:     f.file("videoFile"),
		ThumbnailPath: f.file("thumbnail"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusCreated, video, "video published successfully")
}

// Get handles GET /videos/{videoId}.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	video, err := h.Videos.Watch(r.Context(), chi.URLParam(r, "videoId"), viewerID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, video, "video fetched")
}

// Update handles PATCH /videos/{videoId}.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	f, err := h.Uploads.parse(w, r, "thumbnail")
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer f.cleanup(r)

	actorID, _ := currentUser(r)
	video, err := h.Videos.Update(r.Context(), actorID, chi.URLParam(r, "videoId"), services.UpdateVideoInput{
		Title:         f.value("title"),
		Description:   f.value("description"),
		ThumbnailPath: f.file("thumbnail"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, video, "video updated successfully")
}

// Delete handles DELETE /videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	if err := h.Videos.Delete(r.Context(), actorID, chi.URLParam(r, "videoId")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, struct{}{}, "video deleted successfully")
}

// TogglePublish handles PATCH /videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	actorID, _ := currentUser(r)
	video, err := h.Videos.TogglePublish(r.Context(), actorID, chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(r.Context(), w, http.StatusOK, video, "publish status toggled")
}
