package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
)

// MemoryStore keeps every collection in process memory. It backs tests and local
// development and honours the same uniqueness and cascade rules as the Postgres schema.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[string]models.User
	history       map[string][]string
	videos        map[string]models.Video
	comments      map[string]models.Comment
	playlists     map[string]models.Playlist
	likes         map[string]models.Like
	subscriptions map[string]models.Subscription
	tweets        map[string]models.Tweet
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]models.User),
		history:       make(map[string][]string),
		videos:        make(map[string]models.Video),
		comments:      make(map[string]models.Comment),
		playlists:     make(map[string]models.Playlist),
		likes:         make(map[string]models.Like),
		subscriptions: make(map[string]models.Subscription),
		tweets:        make(map[string]models.Tweet),
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *MemoryStore) Repositories() Store {
	return Store{
		Users:         &memoryUsers{s},
		Videos:        &memoryVideos{s},
		Comments:      &memoryComments{s},
		Playlists:     &memoryPlaylists{s},
		Likes:         &memoryLikes{s},
		Subscriptions: &memorySubscriptions{s},
		Tweets:        &memoryTweets{s},
	}
}

// byCreation orders records oldest first, ties broken by id.
func byCreation(aAt, bAt time.Time, aID, bID string) bool {
	if !aAt.Equal(bAt) {
		return aAt.Before(bAt)
	}
	return aID < bID
}

type memoryUsers struct{ s *MemoryStore }

func (r *memoryUsers) Create(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return ErrConflict
		}
	}
	r.s.users[user.ID] = user
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryUsers) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if strings.TrimSpace(username) == "" {
		return models.User{}, ErrNotFound
	}
	return r.FindByUsernameOrEmail(ctx, username, "")
}

func (r *memoryUsers) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if username != "" && strings.EqualFold(user.Username, username) {
			return user, nil
		}
		if email != "" && strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *memoryUsers) Update(_ context.Context, user models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range r.s.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return ErrConflict
		}
	}
	user.RefreshToken = current.RefreshToken
	user.CreatedAt = current.CreatedAt
	r.s.users[user.ID] = user
	return nil
}

func (r *memoryUsers) SetRefreshToken(_ context.Context, userID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.RefreshToken = token
	r.s.users[userID] = user
	return nil
}

func (r *memoryUsers) PublicProfiles(_ context.Context, ids []string) (map[string]models.PublicProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]models.PublicProfile, len(ids))
	for _, id := range ids {
		if user, ok := r.s.users[id]; ok {
			out[id] = user.Profile()
		}
	}
	return out, nil
}

func (r *memoryUsers) AppendWatchHistory(_ context.Context, userID, videoID string, _ time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.s.videos[videoID]; !ok {
		return ErrNotFound
	}
	r.s.history[userID] = append(removeString(r.s.history[userID], videoID), videoID)
	return nil
}

func (r *memoryUsers) WatchHistory(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.users[userID]; !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), r.s.history[userID]...), nil
}

type memoryVideos struct{ s *MemoryStore }

func (r *memoryVideos) Create(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[video.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.users[video.OwnerID]; !ok {
		return ErrNotFound
	}
	r.s.videos[video.ID] = video
	return nil
}

func (r *memoryVideos) FindByID(_ context.Context, id string) (models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	video, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return video, nil
}

func (r *memoryVideos) FindByIDs(_ context.Context, ids []string) (map[string]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[string]models.Video, len(ids))
	for _, id := range ids {
		if video, ok := r.s.videos[id]; ok {
			out[id] = video
		}
	}
	return out, nil
}

func (r *memoryVideos) Search(_ context.Context, filter query.VideoFilter) ([]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(filter.Text))
	var matched []models.Video
	for _, video := range r.s.videos {
		if filter.OwnerID != "" && video.OwnerID != filter.OwnerID {
			continue
		}
		if !video.IsPublished && (filter.ViewerID == "" || video.OwnerID != filter.ViewerID) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(video.Title), needle) &&
			!strings.Contains(strings.ToLower(video.Description), needle) {
			continue
		}
		matched = append(matched, video)
	}

	sortVideos(matched, filter.Sort)
	start, end := filter.Page.Window(len(matched))
	return matched[start:end], nil
}

func sortVideos(videos []models.Video, order query.Sort) {
	less := func(a, b models.Video) int {
		switch order.Field {
		case query.SortViews:
			return compareInt64(a.Views, b.Views)
		case query.SortDuration:
			return compareFloat(a.DurationSeconds, b.DurationSeconds)
		case query.SortTitle:
			return strings.Compare(a.Title, b.Title)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	sort.SliceStable(videos, func(i, j int) bool {
		c := less(videos[i], videos[j])
		if c == 0 {
			c = strings.Compare(videos[i].ID, videos[j].ID)
		}
		if order.Direction == query.Asc {
			return c < 0
		}
		return c > 0
	})
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r *memoryVideos) ListByOwner(_ context.Context, ownerID string) ([]models.Video, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Video
	for _, video := range r.s.videos {
		if video.OwnerID == ownerID {
			out = append(out, video)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID)
	})
	return out, nil
}

func (r *memoryVideos) Update(_ context.Context, video models.Video) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.videos[video.ID]
	if !ok {
		return ErrNotFound
	}
	video.OwnerID = current.OwnerID
	video.Views = current.Views
	video.CreatedAt = current.CreatedAt
	r.s.videos[video.ID] = video
	return nil
}

func (r *memoryVideos) IncrementViews(_ context.Context, id string) (models.Video, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	video, ok := r.s.videos[id]
	if !ok {
		return models.Video{}, ErrNotFound
	}
	video.Views++
	r.s.videos[id] = video
	return video, nil
}

func (r *memoryVideos) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.videos[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.videos, id)

	for commentID, comment := range r.s.comments {
		if comment.VideoID == id {
			r.s.deleteCommentLocked(commentID)
		}
	}
	for likeID, like := range r.s.likes {
		if like.TargetType == models.LikeTargetVideo && like.TargetID == id {
			delete(r.s.likes, likeID)
		}
	}
	for playlistID, playlist := range r.s.playlists {
		if playlist.Contains(id) {
			playlist.VideoIDs = removeString(playlist.VideoIDs, id)
			r.s.playlists[playlistID] = playlist
		}
	}
	for userID, ids := range r.s.history {
		r.s.history[userID] = removeString(ids, id)
	}
	return nil
}

func (r *memoryVideos) Totals(_ context.Context, ownerID string) (int64, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var count, views int64
	for _, video := range r.s.videos {
		if video.OwnerID == ownerID {
			count++
			views += video.Views
		}
	}
	return count, views, nil
}

type memoryComments struct{ s *MemoryStore }

func (r *memoryComments) Create(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[comment.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.videos[comment.VideoID]; !ok {
		return ErrNotFound
	}
	r.s.comments[comment.ID] = comment
	return nil
}

func (r *memoryComments) FindByID(_ context.Context, id string) (models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comment, ok := r.s.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return comment, nil
}

func (r *memoryComments) ListByVideo(_ context.Context, videoID string, page query.Page) ([]models.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Comment
	for _, comment := range r.s.comments {
		if comment.VideoID == videoID {
			out = append(out, comment)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	start, end := page.Window(len(out))
	return out[start:end], nil
}

func (r *memoryComments) Update(_ context.Context, comment models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.comments[comment.ID]
	if !ok {
		return ErrNotFound
	}
	current.Content = comment.Content
	current.UpdatedAt = comment.UpdatedAt
	r.s.comments[comment.ID] = current
	return nil
}

func (r *memoryComments) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return ErrNotFound
	}
	r.s.deleteCommentLocked(id)
	return nil
}

func (s *MemoryStore) deleteCommentLocked(id string) {
	delete(s.comments, id)
	for likeID, like := range s.likes {
		if like.TargetType == models.LikeTargetComment && like.TargetID == id {
			delete(s.likes, likeID)
		}
	}
}

type memoryPlaylists struct{ s *MemoryStore }

func (r *memoryPlaylists) Create(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.playlists[playlist.ID]; ok {
		return ErrConflict
	}
	for _, existing := range r.s.playlists {
		if existing.OwnerID == playlist.OwnerID && existing.Name == playlist.Name {
			return ErrConflict
		}
	}
	playlist.VideoIDs = append([]string(nil), playlist.VideoIDs...)
	r.s.playlists[playlist.ID] = playlist
	return nil
}

func (r *memoryPlaylists) FindByID(_ context.Context, id string) (models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	playlist, ok := r.s.playlists[id]
	if !ok {
		return models.Playlist{}, ErrNotFound
	}
	playlist.VideoIDs = append([]string(nil), playlist.VideoIDs...)
	return playlist, nil
}

func (r *memoryPlaylists) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Playlist
	for _, playlist := range r.s.playlists {
		if playlist.OwnerID == ownerID {
			playlist.VideoIDs = append([]string(nil), playlist.VideoIDs...)
			out = append(out, playlist)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *memoryPlaylists) Update(_ context.Context, playlist models.Playlist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.playlists[playlist.ID]
	if !ok {
		return ErrNotFound
	}
	for id, existing := range r.s.playlists {
		if id != playlist.ID && existing.OwnerID == current.OwnerID && existing.Name == playlist.Name {
			return ErrConflict
		}
	}
	current.Name = playlist.Name
	current.Description = playlist.Description
	current.UpdatedAt = playlist.UpdatedAt
	r.s.playlists[playlist.ID] = current
	return nil
}

func (r *memoryPlaylists) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.playlists, id)
	return nil
}

func (r *memoryPlaylists) AddVideo(_ context.Context, playlistID, videoID string, at time.Time) (models.Playlist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	playlist, ok := r.s.playlists[playlistID]
	if !ok {
		return models.Playlist{}, ErrNotFound
	}
	if _, ok := r.s.videos[videoID]; !ok {
		return models.Playlist{}, ErrNotFound
	}
	if playlist.Contains(videoID) {
		return models.Playlist{}, ErrConflict
	}
	playlist.VideoIDs = append(append([]string(nil), playlist.VideoIDs...), videoID)
	playlist.UpdatedAt = at
	r.s.playlists[playlistID] = playlist
	return playlist, nil
}

func (r *memoryPlaylists) RemoveVideo(_ context.Context, playlistID, videoID string, at time.Time) (models.Playlist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	playlist, ok := r.s.playlists[playlistID]
	if !ok || !playlist.Contains(videoID) {
		return models.Playlist{}, ErrNotFound
	}
	playlist.VideoIDs = removeString(playlist.VideoIDs, videoID)
	playlist.UpdatedAt = at
	r.s.playlists[playlistID] = playlist
	return playlist, nil
}

type memoryLikes struct{ s *MemoryStore }

func (r *memoryLikes) Find(_ context.Context, userID string, target models.LikeTarget, targetID string) (models.Like, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, like := range r.s.likes {
		if like.LikedBy == userID && like.TargetType == target && like.TargetID == targetID {
			return like, nil
		}
	}
	return models.Like{}, ErrNotFound
}

func (r *memoryLikes) Create(_ context.Context, like models.Like) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.likes {
		if existing.LikedBy == like.LikedBy && existing.TargetType == like.TargetType && existing.TargetID == like.TargetID {
			return ErrConflict
		}
	}
	if !r.s.targetExistsLocked(like.TargetType, like.TargetID) {
		return ErrNotFound
	}
	r.s.likes[like.ID] = like
	return nil
}

func (s *MemoryStore) targetExistsLocked(target models.LikeTarget, id string) bool {
	var ok bool
	switch target {
	case models.LikeTargetVideo:
		_, ok = s.videos[id]
	case models.LikeTargetComment:
		_, ok = s.comments[id]
	case models.LikeTargetTweet:
		_, ok = s.tweets[id]
	}
	return ok
}

func (r *memoryLikes) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.likes[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.likes, id)
	return nil
}

func (r *memoryLikes) LikedVideoIDs(_ context.Context, userID string) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var likes []models.Like
	for _, like := range r.s.likes {
		if like.LikedBy == userID && like.TargetType == models.LikeTargetVideo {
			likes = append(likes, like)
		}
	}
	sort.Slice(likes, func(i, j int) bool {
		return byCreation(likes[j].CreatedAt, likes[i].CreatedAt, likes[j].ID, likes[i].ID)
	})
	ids := make([]string, 0, len(likes))
	for _, like := range likes {
		ids = append(ids, like.TargetID)
	}
	return ids, nil
}

func (r *memoryLikes) CountForOwnerVideos(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, like := range r.s.likes {
		if like.TargetType != models.LikeTargetVideo {
			continue
		}
		if video, ok := r.s.videos[like.TargetID]; ok && video.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

type memorySubscriptions struct{ s *MemoryStore }

func (r *memorySubscriptions) Find(_ context.Context, subscriberID, channelID string) (models.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, sub := range r.s.subscriptions {
		if sub.SubscriberID == subscriberID && sub.ChannelID == channelID {
			return sub, nil
		}
	}
	return models.Subscription{}, ErrNotFound
}

func (r *memorySubscriptions) Create(_ context.Context, sub models.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.subscriptions {
		if existing.SubscriberID == sub.SubscriberID && existing.ChannelID == sub.ChannelID {
			return ErrConflict
		}
	}
	if _, ok := r.s.users[sub.ChannelID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.s.users[sub.SubscriberID]; !ok {
		return ErrNotFound
	}
	r.s.subscriptions[sub.ID] = sub
	return nil
}

func (r *memorySubscriptions) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.subscriptions[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.subscriptions, id)
	return nil
}

func (r *memorySubscriptions) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	subs, err := r.ListSubscribers(ctx, channelID)
	return int64(len(subs)), err
}

func (r *memorySubscriptions) CountSubscriptions(ctx context.Context, subscriberID string) (int64, error) {
	subs, err := r.ListSubscriptions(ctx, subscriberID)
	return int64(len(subs)), err
}

func (r *memorySubscriptions) ListSubscribers(_ context.Context, channelID string) ([]models.Subscription, error) {
	return r.list(func(sub models.Subscription) bool { return sub.ChannelID == channelID }), nil
}

func (r *memorySubscriptions) ListSubscriptions(_ context.Context, subscriberID string) ([]models.Subscription, error) {
	return r.list(func(sub models.Subscription) bool { return sub.SubscriberID == subscriberID }), nil
}

func (r *memorySubscriptions) list(match func(models.Subscription) bool) []models.Subscription {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Subscription
	for _, sub := range r.s.subscriptions {
		if match(sub) {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID)
	})
	return out
}

type memoryTweets struct{ s *MemoryStore }

func (r *memoryTweets) Create(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tweets[tweet.ID]; ok {
		return ErrConflict
	}
	if _, ok := r.s.users[tweet.OwnerID]; !ok {
		return ErrNotFound
	}
	r.s.tweets[tweet.ID] = tweet
	return nil
}

func (r *memoryTweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tweet, ok := r.s.tweets[id]
	if !ok {
		return models.Tweet{}, ErrNotFound
	}
	return tweet, nil
}

func (r *memoryTweets) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Tweet
	for _, tweet := range r.s.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, tweet)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byCreation(out[j].CreatedAt, out[i].CreatedAt, out[j].ID, out[i].ID)
	})
	return out, nil
}

func (r *memoryTweets) Update(_ context.Context, tweet models.Tweet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.tweets[tweet.ID]
	if !ok {
		return ErrNotFound
	}
	current.Content = tweet.Content
	current.UpdatedAt = tweet.UpdatedAt
	r.s.tweets[tweet.ID] = current
	return nil
}

func (r *memoryTweets) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tweets[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.tweets, id)
	for likeID, like := range r.s.likes {
		if like.TargetType == models.LikeTargetTweet && like.TargetID == id {
			delete(r.s.likes, likeID)
		}
	}
	return nil
}

func removeString(values []string, target string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}

var (
	_ UserRepository         = (*memoryUsers)(nil)
	_ VideoRepository        = (*memoryVideos)(nil)
	_ CommentRepository      = (*memoryComments)(nil)
	_ PlaylistRepository     = (*memoryPlaylists)(nil)
	_ LikeRepository         = (*memoryLikes)(nil)
	_ SubscriptionRepository = (*memorySubscriptions)(nil)
	_ TweetRepository        = (*memoryTweets)(nil)
)
