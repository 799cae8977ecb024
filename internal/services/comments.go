package services

import (
	"context"
	"strings"

	"github.com/vidtube/backend/internal/authz"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/validation"
	"github.com/vidtube/backend/internal/views"
)

// CommentInput carries comment text.
type CommentInput struct {
	Content string `json:"content" validate:"notblank,max=2000"`
}

// CommentService manages comments on videos.
type CommentService struct {
	comments repositories.CommentRepository
	videos   repositories.VideoRepository
	composer *views.Composer
	clock
}

// NewCommentService constructs a CommentService.
func NewCommentService(comments repositories.CommentRepository, videos repositories.VideoRepository, composer *views.Composer) *CommentService {
	return &CommentService{comments: comments, videos: videos, composer: composer}
}

// Add comments on an existing video.
func (s *CommentService) Add(ctx context.Context, actorID, videoID string, in CommentInput) (models.CommentView, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return models.CommentView{}, err
	}
	if _, err := s.videos.FindByID(ctx, videoID); err != nil {
		return models.CommentView{}, loadError(err, "video not found")
	}

	now := s.timestamp()
	comment := models.Comment{
		ID:        newID(),
		VideoID:   videoID,
		OwnerID:   actorID,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return models.CommentView{}, writeError(err, "comment already exists", "add comment")
	}
	return s.composer.Comment(ctx, comment)
}

// Update replaces the text of the actor's own comment.
func (s *CommentService) Update(ctx context.Context, actorID, commentID string, in CommentInput) (models.CommentView, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return models.CommentView{}, err
	}
	comment, err := s.owned(ctx, actorID, commentID)
	if err != nil {
		return models.CommentView{}, err
	}

	comment.Content = in.Content
	comment.UpdatedAt = s.timestamp()
	if err := s.comments.Update(ctx, comment); err != nil {
		return models.CommentView{}, loadError(err, "comment not found")
	}
	return s.composer.Comment(ctx, comment)
}

// Delete removes the actor's own comment and the likes on it.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) error {
	if _, err := s.owned(ctx, actorID, commentID); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return loadError(err, "comment not found")
	}
	return nil
}

func (s *CommentService) owned(ctx context.Context, actorID, commentID string) (models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, loadError(err, "comment not found")
	}
	if err := authz.Authorize(actorID, comment.OwnerID, "comment"); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}
