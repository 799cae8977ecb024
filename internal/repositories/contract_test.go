package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/query"
)

// storeFactory returns an empty store for one subtest.
type storeFactory func(t *testing.T) Store

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, store Store, username string) models.User {
	t.Helper()
	user := models.User{
		ID:           newID(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "User " + username,
		Avatar:       "https://cdn.example.com/" + username + ".png",
		AvatarRef:    username + ".png",
		PasswordHash: "hash",
		CreatedAt:    epoch,
		UpdatedAt:    epoch,
	}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func seedVideo(t *testing.T, store Store, owner models.User, title string, offset time.Duration, published bool) models.Video {
	t.Helper()
	video := models.Video{
		ID:              newID(),
		OwnerID:         owner.ID,
		VideoFile:       "https://cdn.example.com/" + title + ".mp4",
		VideoFileRef:    title + ".mp4",
		Thumbnail:       "https://cdn.example.com/" + title + ".jpg",
		ThumbnailRef:    title + ".jpg",
		Title:           title,
		Description:     "about " + title,
		DurationSeconds: float64(len(title)),
		IsPublished:     published,
		CreatedAt:       epoch.Add(offset),
		UpdatedAt:       epoch.Add(offset),
	}
	require.NoError(t, store.Videos.Create(context.Background(), video))
	return video
}

func videoIDs(videos []models.Video) []string {
	out := make([]string, 0, len(videos))
	for _, v := range videos {
		out = append(out, v.ID)
	}
	return out
}

// runStoreContract exercises the behaviour every Store implementation must share.
func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("users are unique ignoring case", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")

		dup := alice
		dup.ID = newID()
		dup.Username = "ALICE"
		dup.Email = "other@example.com"
		assert.ErrorIs(t, store.Users.Create(ctx, dup), ErrConflict)

		dup.Username = "someone"
		dup.Email = "Alice@Example.com"
		assert.ErrorIs(t, store.Users.Create(ctx, dup), ErrConflict)

		found, err := store.Users.FindByUsername(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)

		found, err = store.Users.FindByUsernameOrEmail(ctx, "", "ALICE@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, found.ID)

		_, err = store.Users.FindByUsername(ctx, " ")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Users.FindByID(ctx, newID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("user update keeps refresh token", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")

		require.NoError(t, store.Users.SetRefreshToken(ctx, alice.ID, "refresh-1"))

		alice.FullName = "Alice Liddell"
		alice.UpdatedAt = epoch.Add(time.Hour)
		require.NoError(t, store.Users.Update(ctx, alice))

		found, err := store.Users.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice Liddell", found.FullName)
		assert.Equal(t, "refresh-1", found.RefreshToken)

		alice.Email = bob.Email
		assert.ErrorIs(t, store.Users.Update(ctx, alice), ErrConflict)

		ghost := alice
		ghost.ID = newID()
		ghost.Email = "ghost@example.com"
		ghost.Username = "ghost"
		assert.ErrorIs(t, store.Users.Update(ctx, ghost), ErrNotFound)
		assert.ErrorIs(t, store.Users.SetRefreshToken(ctx, ghost.ID, "x"), ErrNotFound)

		profiles, err := store.Users.PublicProfiles(ctx, []string{alice.ID, ghost.ID})
		require.NoError(t, err)
		assert.Len(t, profiles, 1)
		assert.Equal(t, models.PublicProfile{Username: "alice", FullName: "Alice Liddell", Avatar: alice.Avatar}, profiles[alice.ID])
	})

	t.Run("watch history moves re-watched videos to the end", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		first := seedVideo(t, store, alice, "first", 0, true)
		second := seedVideo(t, store, alice, "second", time.Minute, true)

		require.NoError(t, store.Users.AppendWatchHistory(ctx, alice.ID, first.ID, epoch.Add(time.Hour)))
		require.NoError(t, store.Users.AppendWatchHistory(ctx, alice.ID, second.ID, epoch.Add(2*time.Hour)))
		require.NoError(t, store.Users.AppendWatchHistory(ctx, alice.ID, first.ID, epoch.Add(3*time.Hour)))

		history, err := store.Users.WatchHistory(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{second.ID, first.ID}, history)

		assert.ErrorIs(t, store.Users.AppendWatchHistory(ctx, alice.ID, newID(), epoch), ErrNotFound)
		_, err = store.Users.WatchHistory(ctx, newID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("video search filters sorts and pages", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")

		gopher := seedVideo(t, store, alice, "gophers", 0, true)
		draft := seedVideo(t, store, alice, "gopher draft", time.Minute, false)
		cats := seedVideo(t, store, bob, "cats", 2*time.Minute, true)

		all, err := store.Videos.Search(ctx, query.VideoFilter{Sort: query.DefaultSort(), Page: query.DefaultPageRequest()})
		require.NoError(t, err)
		assert.Equal(t, []string{cats.ID, gopher.ID}, videoIDs(all))

		own, err := store.Videos.Search(ctx, query.VideoFilter{
			Text: "GOPHER", ViewerID: alice.ID, Sort: query.DefaultSort(), Page: query.DefaultPageRequest(),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{draft.ID, gopher.ID}, videoIDs(own))

		byTitle, err := store.Videos.Search(ctx, query.VideoFilter{
			Sort: query.Sort{Field: query.SortTitle, Direction: query.Asc},
			Page: query.Page{Number: 2, Limit: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{gopher.ID}, videoIDs(byTitle))

		channel, err := store.Videos.Search(ctx, query.VideoFilter{
			OwnerID: bob.ID, Sort: query.DefaultSort(), Page: query.DefaultPageRequest(),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{cats.ID}, videoIDs(channel))

		beyond, err := store.Videos.Search(ctx, query.VideoFilter{Sort: query.DefaultSort(), Page: query.Page{Number: 5, Limit: 10}})
		require.NoError(t, err)
		assert.Empty(t, beyond)

		listed, err := store.Videos.ListByOwner(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{draft.ID, gopher.ID}, videoIDs(listed))

		found, err := store.Videos.FindByIDs(ctx, []string{gopher.ID, newID()})
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("video views and totals", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		video := seedVideo(t, store, alice, "intro", 0, true)
		seedVideo(t, store, alice, "outro", time.Minute, false)

		for i := 0; i < 3; i++ {
			_, err := store.Videos.IncrementViews(ctx, video.ID)
			require.NoError(t, err)
		}
		updated, err := store.Videos.IncrementViews(ctx, video.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 4, updated.Views)

		video.Title = "renamed"
		video.Views = 0
		video.UpdatedAt = epoch.Add(time.Hour)
		require.NoError(t, store.Videos.Update(ctx, video))

		found, err := store.Videos.FindByID(ctx, video.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", found.Title)
		assert.EqualValues(t, 4, found.Views)

		count, views, err := store.Videos.Totals(ctx, alice.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
		assert.EqualValues(t, 4, views)

		_, err = store.Videos.IncrementViews(ctx, newID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleting a video cascades", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		video := seedVideo(t, store, alice, "doomed", 0, true)
		kept := seedVideo(t, store, alice, "kept", time.Minute, true)

		comment := models.Comment{ID: newID(), VideoID: video.ID, OwnerID: bob.ID, Content: "nice", CreatedAt: epoch, UpdatedAt: epoch}
		require.NoError(t, store.Comments.Create(ctx, comment))
		require.NoError(t, store.Likes.Create(ctx, models.Like{ID: newID(), LikedBy: bob.ID, TargetType: models.LikeTargetVideo, TargetID: video.ID, CreatedAt: epoch}))
		require.NoError(t, store.Likes.Create(ctx, models.Like{ID: newID(), LikedBy: alice.ID, TargetType: models.LikeTargetComment, TargetID: comment.ID, CreatedAt: epoch}))

		playlist := models.Playlist{ID: newID(), OwnerID: bob.ID, Name: "mix", CreatedAt: epoch, UpdatedAt: epoch}
		require.NoError(t, store.Playlists.Create(ctx, playlist))
		_, err := store.Playlists.AddVideo(ctx, playlist.ID, video.ID, epoch)
		require.NoError(t, err)
		_, err = store.Playlists.AddVideo(ctx, playlist.ID, kept.ID, epoch)
		require.NoError(t, err)
		require.NoError(t, store.Users.AppendWatchHistory(ctx, bob.ID, video.ID, epoch))

		require.NoError(t, store.Videos.Delete(ctx, video.ID))
		assert.ErrorIs(t, store.Videos.Delete(ctx, video.ID), ErrNotFound)

		_, err = store.Comments.FindByID(ctx, comment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Likes.Find(ctx, alice.ID, models.LikeTargetComment, comment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		liked, err := store.Likes.LikedVideoIDs(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, liked)

		found, err := store.Playlists.FindByID(ctx, playlist.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{kept.ID}, found.VideoIDs)

		history, err := store.Users.WatchHistory(ctx, bob.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("comments page oldest first", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		video := seedVideo(t, store, alice, "talk", 0, true)

		var ids []string
		for i := 0; i < 3; i++ {
			c := models.Comment{
				ID: newID(), VideoID: video.ID, OwnerID: alice.ID, Content: fmt.Sprintf("comment %d", i),
				CreatedAt: epoch.Add(time.Duration(i) * time.Minute), UpdatedAt: epoch,
			}
			require.NoError(t, store.Comments.Create(ctx, c))
			ids = append(ids, c.ID)
		}

		page, err := store.Comments.ListByVideo(ctx, video.ID, query.Page{Number: 2, Limit: 2})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, ids[2], page[0].ID)

		edited := page[0]
		edited.Content = "edited"
		edited.OwnerID = newID()
		require.NoError(t, store.Comments.Update(ctx, edited))
		found, err := store.Comments.FindByID(ctx, edited.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", found.Content)
		assert.Equal(t, alice.ID, found.OwnerID)

		orphan := models.Comment{ID: newID(), VideoID: newID(), OwnerID: alice.ID, Content: "x", CreatedAt: epoch, UpdatedAt: epoch}
		assert.ErrorIs(t, store.Comments.Create(ctx, orphan), ErrNotFound)
		assert.ErrorIs(t, store.Comments.Delete(ctx, orphan.ID), ErrNotFound)
	})

	t.Run("playlists keep order and reject duplicates", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		one := seedVideo(t, store, alice, "one", 0, true)
		two := seedVideo(t, store, alice, "two", time.Minute, true)

		playlist := models.Playlist{ID: newID(), OwnerID: alice.ID, Name: "Favourites", CreatedAt: epoch, UpdatedAt: epoch}
		require.NoError(t, store.Playlists.Create(ctx, playlist))

		clash := playlist
		clash.ID = newID()
		assert.ErrorIs(t, store.Playlists.Create(ctx, clash), ErrConflict)

		other := clash
		other.OwnerID = bob.ID
		require.NoError(t, store.Playlists.Create(ctx, other))

		_, err := store.Playlists.AddVideo(ctx, playlist.ID, two.ID, epoch.Add(time.Hour))
		require.NoError(t, err)
		updated, err := store.Playlists.AddVideo(ctx, playlist.ID, one.ID, epoch.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []string{two.ID, one.ID}, updated.VideoIDs)
		assert.True(t, updated.UpdatedAt.Equal(epoch.Add(2*time.Hour)))

		_, err = store.Playlists.AddVideo(ctx, playlist.ID, one.ID, epoch)
		assert.ErrorIs(t, err, ErrConflict)
		_, err = store.Playlists.AddVideo(ctx, playlist.ID, newID(), epoch)
		assert.ErrorIs(t, err, ErrNotFound)

		updated, err = store.Playlists.RemoveVideo(ctx, playlist.ID, two.ID, epoch.Add(3*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, []string{one.ID}, updated.VideoIDs)
		_, err = store.Playlists.RemoveVideo(ctx, playlist.ID, two.ID, epoch)
		assert.ErrorIs(t, err, ErrNotFound)

		renamed := playlist
		renamed.Name = "Watch later"
		require.NoError(t, store.Playlists.Update(ctx, renamed))
		second := models.Playlist{ID: newID(), OwnerID: alice.ID, Name: "Other", CreatedAt: epoch.Add(time.Minute), UpdatedAt: epoch}
		require.NoError(t, store.Playlists.Create(ctx, second))
		second.Name = "Watch later"
		assert.ErrorIs(t, store.Playlists.Update(ctx, second), ErrConflict)

		owned, err := store.Playlists.ListByOwner(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, owned, 2)
		assert.Equal(t, "Watch later", owned[0].Name)

		require.NoError(t, store.Playlists.Delete(ctx, playlist.ID))
		_, err = store.Playlists.FindByID(ctx, playlist.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("likes are unique per target", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		first := seedVideo(t, store, alice, "first", 0, true)
		second := seedVideo(t, store, alice, "second", time.Minute, true)

		like := models.Like{ID: newID(), LikedBy: bob.ID, TargetType: models.LikeTargetVideo, TargetID: first.ID, CreatedAt: epoch}
		require.NoError(t, store.Likes.Create(ctx, like))
		require.NoError(t, store.Likes.Create(ctx, models.Like{ID: newID(), LikedBy: bob.ID, TargetType: models.LikeTargetVideo, TargetID: second.ID, CreatedAt: epoch.Add(time.Minute)}))

		dup := like
		dup.ID = newID()
		assert.ErrorIs(t, store.Likes.Create(ctx, dup), ErrConflict)

		liked, err := store.Likes.LikedVideoIDs(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{second.ID, first.ID}, liked)

		total, err := store.Likes.CountForOwnerVideos(ctx, alice.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)

		tweet := models.Tweet{ID: newID(), OwnerID: alice.ID, Content: "hi", CreatedAt: epoch, UpdatedAt: epoch}
		require.NoError(t, store.Tweets.Create(ctx, tweet))
		require.NoError(t, store.Likes.Create(ctx, models.Like{ID: newID(), LikedBy: bob.ID, TargetType: models.LikeTargetTweet, TargetID: tweet.ID, CreatedAt: epoch}))
		require.NoError(t, store.Tweets.Delete(ctx, tweet.ID))
		_, err = store.Likes.Find(ctx, bob.ID, models.LikeTargetTweet, tweet.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		found, err := store.Likes.Find(ctx, bob.ID, models.LikeTargetVideo, first.ID)
		require.NoError(t, err)
		require.NoError(t, store.Likes.Delete(ctx, found.ID))
		assert.ErrorIs(t, store.Likes.Delete(ctx, found.ID), ErrNotFound)
	})

	t.Run("subscriptions", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		bob := seedUser(t, store, "bob")
		carol := seedUser(t, store, "carol")

		sub := models.Subscription{ID: newID(), SubscriberID: bob.ID, ChannelID: alice.ID, CreatedAt: epoch}
		require.NoError(t, store.Subscriptions.Create(ctx, sub))
		require.NoError(t, store.Subscriptions.Create(ctx, models.Subscription{ID: newID(), SubscriberID: carol.ID, ChannelID: alice.ID, CreatedAt: epoch.Add(time.Minute)}))

		dup := sub
		dup.ID = newID()
		assert.ErrorIs(t, store.Subscriptions.Create(ctx, dup), ErrConflict)
		assert.ErrorIs(t, store.Subscriptions.Create(ctx, models.Subscription{ID: newID(), SubscriberID: bob.ID, ChannelID: newID(), CreatedAt: epoch}), ErrNotFound)

		subscribers, err := store.Subscriptions.ListSubscribers(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, subscribers, 2)
		assert.Equal(t, carol.ID, subscribers[0].SubscriberID)

		n, err := store.Subscriptions.CountSubscribers(ctx, alice.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		n, err = store.Subscriptions.CountSubscriptions(ctx, bob.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		channels, err := store.Subscriptions.ListSubscriptions(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, channels, 1)
		assert.Equal(t, alice.ID, channels[0].ChannelID)

		found, err := store.Subscriptions.Find(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		require.NoError(t, store.Subscriptions.Delete(ctx, found.ID))
		_, err = store.Subscriptions.Find(ctx, bob.ID, alice.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("tweets list newest first", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")

		older := models.Tweet{ID: newID(), OwnerID: alice.ID, Content: "older", CreatedAt: epoch, UpdatedAt: epoch}
		newer := models.Tweet{ID: newID(), OwnerID: alice.ID, Content: "newer", CreatedAt: epoch.Add(time.Minute), UpdatedAt: epoch}
		require.NoError(t, store.Tweets.Create(ctx, older))
		require.NoError(t, store.Tweets.Create(ctx, newer))
		assert.ErrorIs(t, store.Tweets.Create(ctx, models.Tweet{ID: newID(), OwnerID: newID(), Content: "x", CreatedAt: epoch, UpdatedAt: epoch}), ErrNotFound)

		tweets, err := store.Tweets.ListByOwner(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, tweets, 2)
		assert.Equal(t, newer.ID, tweets[0].ID)

		older.Content = "edited"
		require.NoError(t, store.Tweets.Update(ctx, older))
		found, err := store.Tweets.FindByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", found.Content)

		assert.ErrorIs(t, store.Tweets.Update(ctx, models.Tweet{ID: newID(), Content: "x"}), ErrNotFound)
	})

	t.Run("malformed ids match nothing", func(t *testing.T) {
		store := newStore(t)
		alice := seedUser(t, store, "alice")
		seedVideo(t, store, alice, "intro", 0, true)
		const bad = "not-a-uuid"

		_, err := store.Users.FindByID(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Users.WatchHistory(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Videos.FindByID(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Videos.IncrementViews(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Videos.Delete(ctx, bad), ErrNotFound)
		_, err = store.Comments.FindByID(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Playlists.FindByID(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Tweets.FindByID(ctx, bad)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Likes.Find(ctx, alice.ID, models.LikeTargetVideo, bad)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Subscriptions.Find(ctx, alice.ID, bad)
		assert.ErrorIs(t, err, ErrNotFound)

		found, err := store.Videos.Search(ctx, query.VideoFilter{OwnerID: bad, ViewerID: bad, Page: query.Page{Number: 1, Limit: 10}})
		require.NoError(t, err)
		assert.Empty(t, found)
		owned, err := store.Videos.ListByOwner(ctx, bad)
		require.NoError(t, err)
		assert.Empty(t, owned)
		subscribers, err := store.Subscriptions.CountSubscribers(ctx, bad)
		require.NoError(t, err)
		assert.Zero(t, subscribers)
	})
}
