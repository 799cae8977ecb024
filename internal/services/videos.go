package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/validation"
	"github.com/vidtube/backend/internal/views"
)

// PublishVideoInput is the payload of a video upload. Paths point at local temp files.
type PublishVideoInput struct {
	Title         string `json:"title" validate:"notblank,max=200"`
	Description   string `json:"description" validate:"notblank,max=5000"`
	VideoPath     string `json:"videoFile" validate:"required"`
	ThumbnailPath string `json:"thumbnail" validate:"required"`
}

// UpdateVideoInput edits video details. Empty fields are left unchanged.
type UpdateVideoInput struct {
	Title         string `json:"title" validate:"omitempty,max=200"`
	Description   string `json:"description" validate:"omitempty,max=5000"`
	ThumbnailPath string `json:"thumbnail"`
}

// VideoService manages uploaded videos.
type VideoService struct {
	videos   repositories.VideoRepository
	users    repositories.UserRepository
	media    media.Delegate
	composer *views.Composer
	clock
}

// NewVideoService constructs a VideoService.
func NewVideoService(videos repositories.VideoRepository, users repositories.UserRepository, delegate media.Delegate, composer *views.Composer) *VideoService {
	return &VideoService{videos: videos, users: users, media: delegate, composer: composer}
}

// Publish uploads the video file and thumbnail and stores the video as published.
// Either both assets end up referenced by the record or neither remains in storage.
func (s *VideoService) Publish(ctx context.Context, ownerID string, in PublishVideoInput) (models.VideoView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return models.VideoView{}, err
	}

	assets, err := media.UploadAll(ctx, s.media, in.VideoPath, in.ThumbnailPath)
	if err != nil {
		return models.VideoView{}, err
	}

	now := s.timestamp()
	video := models.Video{
		ID:              newID(),
		OwnerID:         ownerID,
		VideoFile:       assets[0].URL,
		VideoFileRef:    assets[0].Ref,
		Thumbnail:       assets[1].URL,
		ThumbnailRef:    assets[1].Ref,
		Title:           in.Title,
		Description:     in.Description,
		DurationSeconds: assets[0].DurationSeconds,
		IsPublished:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		media.Compensate(ctx, s.media, assets...)
		return models.VideoView{}, writeError(err, "video already exists", "publish video")
	}

	logging.FromContext(ctx).Info("video published", zap.String("video_id", video.ID), zap.String("owner_id", ownerID))
	return s.composer.Video(ctx, video)
}

// Watch returns a video and counts the view. Unpublished videos are only visible to their owner.
// When viewerID is set the video is appended to the viewer's watch history.
func (s *VideoService) Watch(ctx context.Context, videoID, viewerID string) (models.VideoView, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.VideoView{}, loadError(err, "video not found")
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return models.VideoView{}, apperr.NotFound("video not found")
	}

	video, err = s.videos.IncrementViews(ctx, videoID)
	if err != nil {
		return models.VideoView{}, loadError(err, "video not found")
	}

	if viewerID != "" {
		if err := s.users.AppendWatchHistory(ctx, viewerID, videoID, s.timestamp()); err != nil {
			logging.FromContext(ctx).Warn("watch history not updated",
				zap.String("user_id", viewerID), zap.String("video_id", videoID), zap.Error(err))
		}
	}
	return s.composer.Video(ctx, video)
}

// Update edits the title or description and can replace the thumbnail. The old thumbnail is
// removed from storage after the record points at the new one.
func (s *VideoService) Update(ctx context.Context, actorID, videoID string, in UpdateVideoInput) (models.VideoView, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" && in.Description == "" && in.ThumbnailPath == "" {
		return models.VideoView{}, apperr.Validation("at least one field is required")
	}
	if err := validation.Struct(in); err != nil {
		return models.VideoView{}, err
	}

	video, err := s.owned(ctx, actorID, videoID)
	if err != nil {
		return models.VideoView{}, err
	}

	var uploaded []media.Asset
	oldThumbnail := ""
	if in.ThumbnailPath != "" {
		uploaded, err = media.UploadAll(ctx, s.media, in.ThumbnailPath)
		if err != nil {
			return models.VideoView{}, err
		}
		oldThumbnail = video.ThumbnailRef
		video.Thumbnail, video.ThumbnailRef = uploaded[0].URL, uploaded[0].Ref
	}
	if in.Title != "" {
		video.Title = in.Title
	}
	if in.Description != "" {
		video.Description = in.Description
	}
	video.UpdatedAt = s.timestamp()

	if err := s.videos.Update(ctx, video); err != nil {
		media.Compensate(ctx, s.media, uploaded...)
		if errors.Is(err, repositories.ErrNotFound) {
			return models.VideoView{}, apperr.NotFound("video not found")
		}
		return models.VideoView{}, writeError(err, "video conflict", "update video")
	}

	dropAssets(ctx, s.media, oldThumbnail)
	return s.composer.Video(ctx, video)
}

// Delete removes the video with everything that references it, then its media.
func (s *VideoService) Delete(ctx context.Context, actorID, videoID string) error {
	video, err := s.owned(ctx, actorID, videoID)
	if err != nil {
		return err
	}
	if err := s.videos.Delete(ctx, videoID); err != nil {
		return loadError(err, "video not found")
	}

	dropAssets(ctx, s.media, video.VideoFileRef, video.ThumbnailRef)
	logging.FromContext(ctx).Info("video deleted", zap.String("video_id", videoID))
	return nil
}

// TogglePublish flips the published flag.
func (s *VideoService) TogglePublish(ctx context.Context, actorID, videoID string) (models.VideoView, error) {
	video, err := s.owned(ctx, actorID, videoID)
	if err != nil {
		return models.VideoView{}, err
	}
	video.IsPublished = !video.IsPublished
	video.UpdatedAt = s.timestamp()
	if err := s.videos.Update(ctx, video); err != nil {
		return models.VideoView{}, loadError(err, "video not found")
	}
	return s.composer.Video(ctx, video)
}

func (s *VideoService) owned(ctx context.Context, actorID, videoID string) (models.Video, error) {
	video, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return models.Video{}, loadError(err, "video not found")
	}
	if err := authz.Authorize(actorID, video.OwnerID, "video"); err != nil {
		return models.Video{}, err
	}
	return video, nil
}
