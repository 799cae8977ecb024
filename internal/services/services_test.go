package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/views"
)

const testPassword = "correct-horse"

// fakeDelegate hands out sequential refs and records deletions.
type fakeDelegate struct {
	mu       sync.Mutex
	seq      int
	failOn   map[string]error
	uploaded []string
	deleted  []string
}

func newFakeDelegate() *fakeDelegate {
	return &fakeDelegate{failOn: make(map[string]error)}
}

func (d *fakeDelegate) Upload(_ context.Context, localPath string) (media.Asset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failOn[localPath]; err != nil {
		return media.Asset{}, err
	}
	d.seq++
	ref := fmt.Sprintf("ref-%d", d.seq)
	d.uploaded = append(d.uploaded, localPath)
	return media.Asset{URL: "https://cdn.example/" + ref, Ref: ref, DurationSeconds: 42.5}, nil
}

func (d *fakeDelegate) Delete(_ context.Context, ref string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, ref)
	return nil
}

func (d *fakeDelegate) deletedRefs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.deleted...)
}

type env struct {
	t     *testing.T
	ctx   context.Context
	store repositories.Store
	media *fakeDelegate

	composer      *views.Composer
	users         *UserService
	videos        *VideoService
	comments      *CommentService
	playlists     *PlaylistService
	likes         *LikeService
	subscriptions *SubscriptionService
	tweets        *TweetService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := repositories.NewMemoryStore().Repositories()
	delegate := newFakeDelegate()
	tokens := auth.NewManager(auth.Config{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	}, store.Users)
	composer := views.NewComposer(store)

	return &env{
		t:             t,
		ctx:           context.Background(),
		store:         store,
		media:         delegate,
		composer:      composer,
		users:         NewUserService(store.Users, tokens, delegate),
		videos:        NewVideoService(store.Videos, store.Users, delegate, composer),
		comments:      NewCommentService(store.Comments, store.Videos, composer),
		playlists:     NewPlaylistService(store.Playlists, store.Videos, composer),
		likes:         NewLikeService(store.Likes, store.Videos, store.Comments, store.Tweets),
		subscriptions: NewSubscriptionService(store.Subscriptions, store.Users),
		tweets:        NewTweetService(store.Tweets, composer),
	}
}

func (e *env) register(username string) models.User {
	e.t.Helper()
	user, err := e.users.Register(e.ctx, RegisterInput{
		FullName:   "Full " + username,
		Email:      username + "@example.com",
		Username:   username,
		Password:   testPassword,
		AvatarPath: "/tmp/" + username + "-avatar.png",
	})
	require.NoError(e.t, err)
	return user
}

func (e *env) publish(owner models.User, title string) models.VideoView {
	e.t.Helper()
	video, err := e.videos.Publish(e.ctx, owner.ID, PublishVideoInput{
		Title:         title,
		Description:   "about " + title,
		VideoPath:     "/tmp/" + title + ".mp4",
		ThumbnailPath: "/tmp/" + title + ".png",
	})
	require.NoError(e.t, err)
	return video
}
