package services

import (
	"context"
	"errors"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// LikeService toggles likes on videos, comments and tweets.
type LikeService struct {
	likes    repositories.LikeRepository
	videos   repositories.VideoRepository
	comments repositories.CommentRepository
	tweets   repositories.TweetRepository
	clock
}

// NewLikeService constructs a LikeService.
func NewLikeService(likes repositories.LikeRepository, videos repositories.VideoRepository, comments repositories.CommentRepository, tweets repositories.TweetRepository) *LikeService {
	return &LikeService{likes: likes, videos: videos, comments: comments, tweets: tweets}
}

// Toggle likes the target when the actor has not liked it yet and unlikes it otherwise.
func (s *LikeService) Toggle(ctx context.Context, actorID string, target models.LikeTarget, targetID string) (models.LikeStatus, error) {
	if err := s.exists(ctx, target, targetID); err != nil {
		return models.LikeStatus{}, err
	}

	status := models.LikeStatus{TargetType: target, TargetID: targetID}
	existing, err := s.likes.Find(ctx, actorID, target, targetID)
	switch {
	case err == nil:
		if err := s.likes.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return models.LikeStatus{}, apperr.Internal("failed to remove like", err)
		}
		return status, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return models.LikeStatus{}, apperr.Internal("failed to load like", err)
	}

	like := models.Like{
		ID:         newID(),
		LikedBy:    actorID,
		TargetType: target,
		TargetID:   targetID,
		CreatedAt:  s.timestamp(),
	}
	// A concurrent toggle may have inserted the same pair; the caller still ends up liking it.
	if err := s.likes.Create(ctx, like); err != nil && !errors.Is(err, repositories.ErrConflict) {
		return models.LikeStatus{}, writeError(err, "already liked", "add like")
	}
	status.IsLiked = true
	return status, nil
}

func (s *LikeService) exists(ctx context.Context, target models.LikeTarget, id string) error {
	var err error
	switch target {
	case models.LikeTargetVideo:
		_, err = s.videos.FindByID(ctx, id)
	case models.LikeTargetComment:
		_, err = s.comments.FindByID(ctx, id)
	case models.LikeTargetTweet:
		_, err = s.tweets.FindByID(ctx, id)
	default:
		return apperr.Validation("unsupported like target")
	}
	if err != nil {
		return loadError(err, string(target)+" not found")
	}
	return nil
}

// SubscriptionService toggles channel subscriptions.
type SubscriptionService struct {
	subscriptions repositories.SubscriptionRepository
	users         repositories.UserRepository
	clock
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(subscriptions repositories.SubscriptionRepository, users repositories.UserRepository) *SubscriptionService {
	return &SubscriptionService{subscriptions: subscriptions, users: users}
}

// Toggle subscribes the actor to channelID, or unsubscribes when already subscribed.
func (s *SubscriptionService) Toggle(ctx context.Context, actorID, channelID string) (models.SubscriptionStatus, error) {
	if actorID == channelID {
		return models.SubscriptionStatus{}, apperr.Validation("you cannot subscribe to your own channel")
	}
	if _, err := s.users.FindByID(ctx, channelID); err != nil {
		return models.SubscriptionStatus{}, loadError(err, "channel not found")
	}

	status := models.SubscriptionStatus{ChannelID: channelID}
	existing, err := s.subscriptions.Find(ctx, actorID, channelID)
	switch {
	case err == nil:
		if err := s.subscriptions.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return models.SubscriptionStatus{}, apperr.Internal("failed to unsubscribe", err)
		}
		return status, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return models.SubscriptionStatus{}, apperr.Internal("failed to load subscription", err)
	}

	sub := models.Subscription{
		ID:           newID(),
		SubscriberID: actorID,
		ChannelID:    channelID,
		CreatedAt:    s.timestamp(),
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil && !errors.Is(err, repositories.ErrConflict) {
		return models.SubscriptionStatus{}, writeError(err, "already subscribed", "subscribe")
	}
	status.IsSubscribed = true
	return status, nil
}
