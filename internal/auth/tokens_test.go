package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
)

type fakeSessionStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeSessionStore(users ...models.User) *fakeSessionStore {
	s := &fakeSessionStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeSessionStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, errors.New("not found")
	}
	return u, nil
}

func (s *fakeSessionStore) SetRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return errors.New("not found")
	}
	u.RefreshToken = token
	s.users[userID] = u
	return nil
}

func (s *fakeSessionStore) stored(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID].RefreshToken
}

var testUser = models.User{ID: "user-1", Username: "alice", Email: "alice@example.com", FullName: "Alice A"}

func newTestManager(store SessionStore) *Manager {
	return NewManager(Config{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	}, store)
}

func TestManagerIssuePersistsRefreshToken(t *testing.T) {
	store := newFakeSessionStore(testUser)
	manager := newTestManager(store)

	tokens, err := manager.Issue(context.Background(), testUser)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, tokens.RefreshToken, store.stored(testUser.ID))

	claims, err := manager.Authenticate(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.ID)
	assert.Equal(t, testUser.Username, claims.Username)
	assert.Equal(t, testUser.Email, claims.Email)
}

func TestManagerIssueTwiceYieldsDistinctTokens(t *testing.T) {
	manager := newTestManager(newFakeSessionStore(testUser))

	first, err := manager.Issue(context.Background(), testUser)
	require.NoError(t, err)
	second, err := manager.Issue(context.Background(), testUser)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestManagerIssueValidation(t *testing.T) {
	manager := newTestManager(newFakeSessionStore())
	_, err := manager.Issue(context.Background(), models.User{})
	assert.Error(t, err)
}

func TestManagerRefreshRotates(t *testing.T) {
	store := newFakeSessionStore(testUser)
	manager := newTestManager(store)

	tokens, err := manager.Issue(context.Background(), testUser)
	require.NoError(t, err)

	user, refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, user.ID)
	assert.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, refreshed.RefreshToken, store.stored(testUser.ID))

	_, _, err = manager.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrStaleRefreshToken)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestManagerRefreshFailures(t *testing.T) {
	store := newFakeSessionStore(testUser)
	manager := newTestManager(store)

	_, _, err := manager.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingRefreshToken)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, _, err = manager.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	tokens, err := manager.Issue(context.Background(), testUser)
	require.NoError(t, err)

	// An access token is signed with a different secret and must not refresh.
	_, _, err = manager.Refresh(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	manager.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = manager.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManagerRevoke(t *testing.T) {
	store := newFakeSessionStore(testUser)
	manager := newTestManager(store)

	tokens, err := manager.Issue(context.Background(), testUser)
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(context.Background(), testUser.ID))
	assert.Empty(t, store.stored(testUser.ID))

	_, _, err = manager.Refresh(context.Background(), tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrStaleRefreshToken)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	manager := newTestManager(newFakeSessionStore(testUser))

	tokens, err := manager.Issue(context.Background(), testUser)
	require.NoError(t, err)

	manager.now = func() time.Time { return time.Now().Add(5 * time.Minute) }
	_, err = manager.Authenticate(tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "correct horse"))
}
