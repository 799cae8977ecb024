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

// TweetInput carries tweet text.
type TweetInput struct {
	Content string `json:"content" validate:"notblank,max=280"`
}

// TweetService manages channel posts.
type TweetService struct {
	tweets   repositories.TweetRepository
	composer *views.Composer
	clock
}

// NewTweetService constructs a TweetService.
func NewTweetService(tweets repositories.TweetRepository, composer *views.Composer) *TweetService {
	return &TweetService{tweets: tweets, composer: composer}
}

// Create posts a tweet on the actor's channel.
func (s *TweetService) Create(ctx context.Context, actorID string, in TweetInput) (models.TweetView, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return models.TweetView{}, err
	}

	now := s.timestamp()
	tweet := models.Tweet{ID: newID(), OwnerID: actorID, Content: in.Content, CreatedAt: now, UpdatedAt: now}
	if err := s.tweets.Create(ctx, tweet); err != nil {
		return models.TweetView{}, writeError(err, "tweet already exists", "create tweet")
	}
	return s.composer.Tweet(ctx, tweet)
}

// Update replaces the text of the actor's own tweet.
func (s *TweetService) Update(ctx context.Context, actorID, tweetID string, in TweetInput) (models.TweetView, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return models.TweetView{}, err
	}
	tweet, err := s.owned(ctx, actorID, tweetID)
	if err != nil {
		return models.TweetView{}, err
	}

	tweet.Content = in.Content
	tweet.UpdatedAt = s.timestamp()
	if err := s.tweets.Update(ctx, tweet); err != nil {
		return models.TweetView{}, loadError(err, "tweet not found")
	}
	return s.composer.Tweet(ctx, tweet)
}

// Delete removes the actor's own tweet and the likes on it.
func (s *TweetService) Delete(ctx context.Context, actorID, tweetID string) error {
	if _, err := s.owned(ctx, actorID, tweetID); err != nil {
		return err
	}
	if err := s.tweets.Delete(ctx, tweetID); err != nil {
		return loadError(err, "tweet not found")
	}
	return nil
}

func (s *TweetService) owned(ctx context.Context, actorID, tweetID string) (models.Tweet, error) {
	tweet, err := s.tweets.FindByID(ctx, tweetID)
	if err != nil {
		return models.Tweet{}, loadError(err, "tweet not found")
	}
	if err := authz.Authorize(actorID, tweet.OwnerID, "tweet"); err != nil {
		return models.Tweet{}, err
	}
	return tweet, nil
}
