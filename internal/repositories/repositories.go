package repositories

import (
	"context"
	"time"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
)

// UserRepository defines the data access contract for users and their watch history.
// Username and email lookups are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// FindByUsernameOrEmail matches either non-empty argument.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	SetRefreshToken(ctx context.Context, userID, token string) error
	PublicProfiles(ctx context.Context, ids []string) (map[string]models.PublicProfile, error)
	// AppendWatchHistory records a view; re-watching moves the video to the end.
	AppendWatchHistory(ctx context.Context, userID, videoID string, at time.Time) error
	WatchHistory(ctx context.Context, userID string) ([]string, error)
}

// VideoRepository exposes data access for uploaded videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Video, error)
	Search(ctx context.Context, filter query.VideoFilter) ([]models.Video, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	Update(ctx context.Context, video models.Video) error
	IncrementViews(ctx context.Context, id string) (models.Video, error)
	// Delete removes the video together with its comments, likes, playlist entries and
	// watch history entries.
	Delete(ctx context.Context, id string) error
	Totals(ctx context.Context, ownerID string) (videos int64, views int64, err error)
}

// CommentRepository exposes data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListByVideo(ctx context.Context, videoID string, page query.Page) ([]models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
}

// PlaylistRepository exposes data access for playlists. Names are unique per owner.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	// AddVideo appends a video; ErrConflict when already present.
	AddVideo(ctx context.Context, playlistID, videoID string, at time.Time) (models.Playlist, error)
	// RemoveVideo drops a video; ErrNotFound when absent.
	RemoveVideo(ctx context.Context, playlistID, videoID string, at time.Time) (models.Playlist, error)
}

// LikeRepository exposes data access for likes. A (user, target) pair is unique.
type LikeRepository interface {
	Find(ctx context.Context, userID string, target models.LikeTarget, targetID string) (models.Like, error)
	Create(ctx context.Context, like models.Like) error
	Delete(ctx context.Context, id string) error
	LikedVideoIDs(ctx context.Context, userID string) ([]string, error)
	CountForOwnerVideos(ctx context.Context, ownerID string) (int64, error)
}

// SubscriptionRepository exposes data access for channel subscriptions.
type SubscriptionRepository interface {
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	Create(ctx context.Context, sub models.Subscription) error
	Delete(ctx context.Context, id string) error
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscriptions(ctx context.Context, subscriberID string) (int64, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.Subscription, error)
	ListSubscriptions(ctx context.Context, subscriberID string) ([]models.Subscription, error)
}

// TweetRepository exposes data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
}

// Store bundles every repository backed by the same database.
type Store struct {
	Users         UserRepository
	Videos        VideoRepository
	Comments      CommentRepository
	Playlists     PlaylistRepository
	Likes         LikeRepository
	Subscriptions SubscriptionRepository
	Tweets        TweetRepository
}
