// Package views assembles read models by joining stored entities with the public profiles of
// the users who created them.
package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
	"github.com/vidtube/backend/internal/repositories"
)

// Composer builds the joined views served by read endpoints. It never mutates state.
type Composer struct {
	users         repositories.UserRepository
	videos        repositories.VideoRepository
	comments      repositories.CommentRepository
	playlists     repositories.PlaylistRepository
	likes         repositories.LikeRepository
	subscriptions repositories.SubscriptionRepository
	tweets        repositories.TweetRepository
}

// NewComposer constructs a Composer over the given store.
func NewComposer(store repositories.Store) *Composer {
	return &Composer{
		users:         store.Users,
		videos:        store.Videos,
		comments:      store.Comments,
		playlists:     store.Playlists,
		likes:         store.Likes,
		subscriptions: store.Subscriptions,
		tweets:        store.Tweets,
	}
}

func lookupError(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal("failed to load "+strings.TrimSuffix(msg, " not found"), err)
}

// ChannelProfile returns the channel page of username. viewerID may be empty.
func (c *Composer) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.ChannelProfile{}, apperr.Validation("username is required")
	}

	user, err := c.users.FindByUsername(ctx, username)
	if err != nil {
		return models.ChannelProfile{}, lookupError(err, "channel not found")
	}

	subscribers, err := c.subscriptions.CountSubscribers(ctx, user.ID)
	if err != nil {
		return models.ChannelProfile{}, apperr.Internal("failed to count subscribers", err)
	}
	subscribedTo, err := c.subscriptions.CountSubscriptions(ctx, user.ID)
	if err != nil {
		return models.ChannelProfile{}, apperr.Internal("failed to count subscriptions", err)
	}

	isSubscribed := false
	if viewerID != "" {
		_, err := c.subscriptions.Find(ctx, viewerID, user.ID)
		switch {
		case err == nil:
			isSubscribed = true
		case !errors.Is(err, repositories.ErrNotFound):
			return models.ChannelProfile{}, apperr.Internal("failed to load subscription", err)
		}
	}

	return models.ChannelProfile{
		ID:                        user.ID,
		Username:                  user.Username,
		FullName:                  user.FullName,
		Email:                     user.Email,
		Avatar:                    user.Avatar,
		CoverImage:                user.CoverImage,
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
	}, nil
}

// profiles resolves public profiles for the distinct ids. Unknown users map to a zero profile.
func (c *Composer) profiles(ctx context.Context, ids []string) (map[string]models.PublicProfile, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	out, err := c.users.PublicProfiles(ctx, unique)
	if err != nil {
		return nil, apperr.Internal("failed to load user profiles", err)
	}
	return out, nil
}

// joinVideos attaches each video's owner profile, preserving order.
func (c *Composer) joinVideos(ctx context.Context, videos []models.Video) ([]models.VideoView, error) {
	owners := make([]string, len(videos))
	for i, v := range videos {
		owners[i] = v.OwnerID
	}
	profiles, err := c.profiles(ctx, owners)
	if err != nil {
		return nil, err
	}

	out := make([]models.VideoView, len(videos))
	for i, v := range videos {
		out[i] = models.VideoView{Video: v, CreatedBy: profiles[v.OwnerID]}
	}
	return out, nil
}

// Video joins a single video with its owner.
func (c *Composer) Video(ctx context.Context, v models.Video) (models.VideoView, error) {
	views, err := c.joinVideos(ctx, []models.Video{v})
	if err != nil {
		return models.VideoView{}, err
	}
	return views[0], nil
}

// videosInOrder resolves ids to joined videos in the given order, dropping ids that no
// longer resolve and unpublished videos viewerID does not own.
func (c *Composer) videosInOrder(ctx context.Context, ids []string, viewerID string) ([]models.VideoView, error) {
	byID, err := c.videos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load videos", err)
	}
	ordered := make([]models.Video, 0, len(ids))
	for _, id := range ids {
		v, ok := byID[id]
		if !ok || (!v.IsPublished && v.OwnerID != viewerID) {
			continue
		}
		ordered = append(ordered, v)
	}
	return c.joinVideos(ctx, ordered)
}

// PlaylistView returns a playlist joined to its owner and to each of its videos, which are in
// turn joined to their own owners. Unpublished videos are listed only for their owner.
func (c *Composer) PlaylistView(ctx context.Context, playlistID, viewerID string) (models.PlaylistView, error) {
	p, err := c.playlists.FindByID(ctx, playlistID)
	if err != nil {
		return models.PlaylistView{}, lookupError(err, "playlist not found")
	}
	return c.composePlaylist(ctx, p, viewerID)
}

// Playlist joins an already loaded playlist as seen by its owner.
func (c *Composer) Playlist(ctx context.Context, p models.Playlist) (models.PlaylistView, error) {
	return c.composePlaylist(ctx, p, p.OwnerID)
}

func (c *Composer) composePlaylist(ctx context.Context, p models.Playlist, viewerID string) (models.PlaylistView, error) {
	videos, err := c.videosInOrder(ctx, p.VideoIDs, viewerID)
	if err != nil {
		return models.PlaylistView{}, err
	}
	owner, err := c.profiles(ctx, []string{p.OwnerID})
	if err != nil {
		return models.PlaylistView{}, err
	}
	return models.PlaylistView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedBy:   owner[p.OwnerID],
		Videos:      videos,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

// OwnerPlaylists returns every playlist of ownerID, composed like PlaylistView.
func (c *Composer) OwnerPlaylists(ctx context.Context, ownerID, viewerID string) ([]models.PlaylistView, error) {
	playlists, err := c.playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("failed to load playlists", err)
	}
	out := make([]models.PlaylistView, 0, len(playlists))
	for _, p := range playlists {
		view, err := c.composePlaylist(ctx, p, viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// WatchHistory returns the user's watched videos in history order.
func (c *Composer) WatchHistory(ctx context.Context, userID string) ([]models.VideoView, error) {
	ids, err := c.users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user not found")
	}
	return c.videosInOrder(ctx, ids, userID)
}

// CommentFeed returns one page of a video's comments in creation order.
func (c *Composer) CommentFeed(ctx context.Context, videoID string, page query.Page) ([]models.CommentView, error) {
	if _, err := c.videos.FindByID(ctx, videoID); err != nil {
		return nil, lookupError(err, "video not found")
	}

	comments, err := c.comments.ListByVideo(ctx, videoID, page)
	if err != nil {
		return nil, apperr.Internal("failed to load comments", err)
	}

	authors := make([]string, len(comments))
	for i, cm := range comments {
		authors[i] = cm.OwnerID
	}
	profiles, err := c.profiles(ctx, authors)
	if err != nil {
		return nil, err
	}

	out := make([]models.CommentView, len(comments))
	for i, cm := range comments {
		out[i] = models.CommentView{Comment: cm, CreatedBy: profiles[cm.OwnerID]}
	}
	return out, nil
}

// Comment joins a single comment with its author.
func (c *Composer) Comment(ctx context.Context, cm models.Comment) (models.CommentView, error) {
	profiles, err := c.profiles(ctx, []string{cm.OwnerID})
	if err != nil {
		return models.CommentView{}, err
	}
	return models.CommentView{Comment: cm, CreatedBy: profiles[cm.OwnerID]}, nil
}

// VideoSearch runs a filtered, sorted, paginated search.
func (c *Composer) VideoSearch(ctx context.Context, filter query.VideoFilter) ([]models.VideoView, error) {
	if filter.Page.Limit <= 0 || filter.Page.Number <= 0 {
		filter.Page = query.DefaultPageRequest()
	}
	if filter.Sort.Field == "" {
		filter.Sort = query.DefaultSort()
	}

	videos, err := c.videos.Search(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to search videos", err)
	}
	return c.joinVideos(ctx, videos)
}

// ChannelVideos returns all of ownerID's videos, published or not, newest first.
func (c *Composer) ChannelVideos(ctx context.Context, ownerID string) ([]models.VideoView, error) {
	videos, err := c.videos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("failed to load channel videos", err)
	}
	return c.joinVideos(ctx, videos)
}

// LikedVideos returns the videos userID liked, most recent like first.
func (c *Composer) LikedVideos(ctx context.Context, userID string) ([]models.VideoView, error) {
	ids, err := c.likes.LikedVideoIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("failed to load liked videos", err)
	}
	return c.videosInOrder(ctx, ids, userID)
}

// DashboardStats aggregates a channel's counters. An owner with no content gets zeros.
func (c *Composer) DashboardStats(ctx context.Context, ownerID string) (models.DashboardStats, error) {
	var stats models.DashboardStats

	videos, views, err := c.videos.Totals(ctx, ownerID)
	if err != nil {
		return models.DashboardStats{}, apperr.Internal("failed to aggregate videos", err)
	}
	stats.TotalVideos = videos
	stats.TotalViews = views

	if stats.TotalSubscribers, err = c.subscriptions.CountSubscribers(ctx, ownerID); err != nil {
		return models.DashboardStats{}, apperr.Internal("failed to count subscribers", err)
	}
	if stats.TotalLikes, err = c.likes.CountForOwnerVideos(ctx, ownerID); err != nil {
		return models.DashboardStats{}, apperr.Internal("failed to count likes", err)
	}
	return stats, nil
}

// Tweets returns a user's tweets joined with the author, newest first.
func (c *Composer) Tweets(ctx context.Context, ownerID string) ([]models.TweetView, error) {
	if _, err := c.users.FindByID(ctx, ownerID); err != nil {
		return nil, lookupError(err, "user not found")
	}

	tweets, err := c.tweets.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal("failed to load tweets", err)
	}
	profiles, err := c.profiles(ctx, []string{ownerID})
	if err != nil {
		return nil, err
	}
	out := make([]models.TweetView, len(tweets))
	for i, t := range tweets {
		out[i] = models.TweetView{Tweet: t, CreatedBy: profiles[t.OwnerID]}
	}
	return out, nil
}

// Tweet joins a single tweet with its author.
func (c *Composer) Tweet(ctx context.Context, t models.Tweet) (models.TweetView, error) {
	profiles, err := c.profiles(ctx, []string{t.OwnerID})
	if err != nil {
		return models.TweetView{}, err
	}
	return models.TweetView{Tweet: t, CreatedBy: profiles[t.OwnerID]}, nil
}

// Subscribers lists the users subscribed to channelID.
func (c *Composer) Subscribers(ctx context.Context, channelID string) ([]models.ChannelSummary, error) {
	if _, err := c.users.FindByID(ctx, channelID); err != nil {
		return nil, lookupError(err, "channel not found")
	}
	subs, err := c.subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		return nil, apperr.Internal("failed to load subscribers", err)
	}
	return c.summaries(ctx, subs, func(s models.Subscription) string { return s.SubscriberID })
}

// SubscribedChannels lists the channels subscriberID follows.
func (c *Composer) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.ChannelSummary, error) {
	if _, err := c.users.FindByID(ctx, subscriberID); err != nil {
		return nil, lookupError(err, "user not found")
	}
	subs, err := c.subscriptions.ListSubscriptions(ctx, subscriberID)
	if err != nil {
		return nil, apperr.Internal("failed to load subscriptions", err)
	}
	return c.summaries(ctx, subs, func(s models.Subscription) string { return s.ChannelID })
}

func (c *Composer) summaries(ctx context.Context, subs []models.Subscription, pick func(models.Subscription) string) ([]models.ChannelSummary, error) {
	ids := make([]string, len(subs))
	for i, s := range subs {
		ids[i] = pick(s)
	}
	profiles, err := c.profiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ChannelSummary, 0, len(subs))
	for _, s := range subs {
		id := pick(s)
		profile, ok := profiles[id]
		if !ok {
			return nil, apperr.Internal("failed to load subscriptions", fmt.Errorf("dangling user %s", id))
		}
		out = append(out, models.ChannelSummary{ID: id, PublicProfile: profile, SubscribedAt: s.CreatedAt})
	}
	return out, nil
}
