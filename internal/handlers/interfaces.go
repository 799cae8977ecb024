package handlers

import (
	"context"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
	"github.com/vidtube/backend/internal/services"
)

// AccountService captures the account and session operations used by the user handlers.
type AccountService interface {
	Register(ctx context.Context, in services.RegisterInput) (models.User, error)
	Login(ctx context.Context, in services.LoginInput) (models.User, models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (models.User, models.SessionTokens, error)
	ChangePassword(ctx context.Context, userID string, in services.ChangePasswordInput) error
	Me(ctx context.Context, userID string) (models.User, error)
	UpdateAccount(ctx context.Context, userID string, in services.UpdateAccountInput) (models.User, error)
}

// VideoService captures video mutations and the counted single-video read.
type VideoService interface {
	Publish(ctx context.Context, ownerID string, in services.PublishVideoInput) (models.VideoView, error)
	Watch(ctx context.Context, videoID, viewerID string) (models.VideoView, error)
	Update(ctx context.Context, actorID, videoID string, in services.UpdateVideoInput) (models.VideoView, error)
	Delete(ctx context.Context, actorID, videoID string) error
	TogglePublish(ctx context.Context, actorID, videoID string) (models.VideoView, error)
}

// CommentService captures comment mutations.
type CommentService interface {
	Add(ctx context.Context, actorID, videoID string, in services.CommentInput) (models.CommentView, error)
	Update(ctx context.Context, actorID, commentID string, in services.CommentInput) (models.CommentView, error)
	Delete(ctx context.Context, actorID, commentID string) error
}

// PlaylistService captures playlist mutations.
type PlaylistService interface {
	Create(ctx context.Context, actorID string, in services.PlaylistInput) (models.PlaylistView, error)
	Update(ctx context.Context, actorID, playlistID string, in services.UpdatePlaylistInput) (models.PlaylistView, error)
	Delete(ctx context.Context, actorID, playlistID string) error
	AddVideo(ctx context.Context, actorID, videoID, playlistID string) (models.PlaylistView, error)
	RemoveVideo(ctx context.Context, actorID, videoID, playlistID string) (models.PlaylistView, error)
}

// LikeService toggles likes.
type LikeService interface {
	Toggle(ctx context.Context, actorID string, target models.LikeTarget, targetID string) (models.LikeStatus, error)
}

// SubscriptionService toggles subscriptions.
type SubscriptionService interface {
	Toggle(ctx context.Context, actorID, channelID string) (models.SubscriptionStatus, error)
}

// TweetService captures tweet mutations.
type TweetService interface {
	Create(ctx context.Context, actorID string, in services.TweetInput) (models.TweetView, error)
	Update(ctx context.Context, actorID, tweetID string, in services.TweetInput) (models.TweetView, error)
	Delete(ctx context.Context, actorID, tweetID string) error
}

// ViewReader serves the composed read models.
type ViewReader interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.VideoView, error)
	VideoSearch(ctx context.Context, filter query.VideoFilter) ([]models.VideoView, error)
	CommentFeed(ctx context.Context, videoID string, page query.Page) ([]models.CommentView, error)
	PlaylistView(ctx context.Context, playlistID, viewerID string) (models.PlaylistView, error)
	OwnerPlaylists(ctx context.Context, ownerID, viewerID string) ([]models.PlaylistView, error)
	LikedVideos(ctx context.Context, userID string) ([]models.VideoView, error)
	Subscribers(ctx context.Context, channelID string) ([]models.ChannelSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.ChannelSummary, error)
	Tweets(ctx context.Context, ownerID string) ([]models.TweetView, error)
	DashboardStats(ctx context.Context, ownerID string) (models.DashboardStats, error)
	ChannelVideos(ctx context.Context, ownerID string) ([]models.VideoView, error)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
