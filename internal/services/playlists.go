package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/validation"
	"github.com/vidtube/backend/internal/views"
)

// PlaylistInput is the payload of a playlist create.
type PlaylistInput struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// UpdatePlaylistInput edits a playlist. Empty fields are left unchanged.
type UpdatePlaylistInput struct {
	Name        string `json:"name" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

const duplicatePlaylist = "playlist with this name already exists"

// PlaylistService manages playlists and their ordered video lists.
type PlaylistService struct {
	playlists repositories.PlaylistRepository
	videos    repositories.VideoRepository
	composer  *views.Composer
	clock
}

// NewPlaylistService constructs a PlaylistService.
func NewPlaylistService(playlists repositories.PlaylistRepository, videos repositories.VideoRepository, composer *views.Composer) *PlaylistService {
	return &PlaylistService{playlists: playlists, videos: videos, composer: composer}
}

// Create adds an empty playlist owned by the actor.
func (s *PlaylistService) Create(ctx context.Context, actorID string, in PlaylistInput) (models.PlaylistView, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return models.PlaylistView{}, err
	}

	now := s.timestamp()
	playlist := models.Playlist{
		ID:          newID(),
		OwnerID:     actorID,
		Name:        in.Name,
		Description: in.Description,
		VideoIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return models.PlaylistView{}, writeError(err, duplicatePlaylist, "create playlist")
	}
	return s.composer.Playlist(ctx, playlist)
}

// Update renames the playlist or changes its description.
func (s *PlaylistService) Update(ctx context.Context, actorID, playlistID string, in UpdatePlaylistInput) (models.PlaylistView, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" && in.Description == "" {
		return models.PlaylistView{}, apperr.Validation("at least one field is required")
	}
	if err := validation.Struct(in); err != nil {
		return models.PlaylistView{}, err
	}

	playlist, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.PlaylistView{}, err
	}
	if in.Name != "" {
		playlist.Name = in.Name
	}
	if in.Description != "" {
		playlist.Description = in.Description
	}
	playlist.UpdatedAt = s.timestamp()

	if err := s.playlists.Update(ctx, playlist); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PlaylistView{}, apperr.NotFound("playlist not found")
		}
		return models.PlaylistView{}, writeError(err, duplicatePlaylist, "update playlist")
	}
	return s.composer.Playlist(ctx, playlist)
}

// Delete removes the playlist. The videos it referenced are untouched.
func (s *PlaylistService) Delete(ctx context.Context, actorID, playlistID string) error {
	if _, err := s.owned(ctx, actorID, playlistID); err != nil {
		return err
	}
	if err := s.playlists.Delete(ctx, playlistID); err != nil {
		return loadError(err, "playlist not found")
	}
	return nil
}

// AddVideo appends an existing video to the end of the playlist.
func (s *PlaylistService) AddVideo(ctx context.Context, actorID, videoID, playlistID string) (models.PlaylistView, error) {
	if _, err := s.owned(ctx, actorID, playlistID); err != nil {
		return models.PlaylistView{}, err
	}
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.PlaylistView{}, loadError(err, "video not found")
	}
	if !video.IsPublished && video.OwnerID != actorID {
		return models.PlaylistView{}, apperr.NotFound("video not found")
	}

	playlist, err := s.playlists.AddVideo(ctx, playlistID, videoID, s.timestamp())
	switch {
	case errors.Is(err, repositories.ErrConflict):
		return models.PlaylistView{}, apperr.Conflict("video already exists in the playlist")
	case err != nil:
		return models.PlaylistView{}, loadError(err, "playlist not found")
	}
	return s.composer.Playlist(ctx, playlist)
}

// RemoveVideo drops a video from the playlist.
func (s *PlaylistService) RemoveVideo(ctx context.Context, actorID, videoID, playlistID string) (models.PlaylistView, error) {
	current, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.PlaylistView{}, err
	}
	if !current.Contains(videoID) {
		return models.PlaylistView{}, apperr.NotFound("video does not exist in this playlist")
	}

	playlist, err := s.playlists.RemoveVideo(ctx, playlistID, videoID, s.timestamp())
	if err != nil {
		return models.PlaylistView{}, loadError(err, "video does not exist in this playlist")
	}
	return s.composer.Playlist(ctx, playlist)
}

func (s *PlaylistService) owned(ctx context.Context, actorID, playlistID string) (models.Playlist, error) {
	playlist, err := s.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, loadError(err, "playlist not found")
	}
	if err := authz.Authorize(actorID, playlist.OwnerID, "playlist"); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}
