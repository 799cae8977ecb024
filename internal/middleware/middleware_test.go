package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

func TestRequestLoggerAttachesRequestScope(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var seenID string
	handler := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.RequestIDFromContext(r.Context())
		logging.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusConflict)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos", nil))

	require.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, seenID, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, http.StatusConflict, entries[1].ContextMap()["status"])
}

func TestRequestLoggerRecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	handler := RequestLogger(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

type stubVerifier struct{}

func (stubVerifier) Authenticate(token string) (auth.AccessClaims, error) {
	if token != "good" {
		return auth.AccessClaims{}, auth.ErrInvalidToken
	}
	return auth.AccessClaims{ID: "user-1"}, nil
}

type stubUsers map[string]models.User

func (s stubUsers) FindByID(_ context.Context, id string) (models.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return models.User{}, errors.New("not found")
}

func newTestAuthenticator(users stubUsers) (*Authenticator, *error) {
	var failed error
	return NewAuthenticator(stubVerifier{}, users, func(w http.ResponseWriter, _ *http.Request, err error) {
		failed = err
		w.WriteHeader(apperr.KindOf(err).Status())
	}), &failed
}

func whoAmI(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := UserFromContext(r.Context()); ok {
			*got = u.ID
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticatorRequire(t *testing.T) {
	a, failed := newTestAuthenticator(stubUsers{"user-1": {ID: "user-1"}})
	var got string

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	a.Require(whoAmI(&got)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
	rec = httptest.NewRecorder()
	a.Require(whoAmI(&got)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	a.Require(whoAmI(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.ErrorIs(t, *failed, apperr.ErrUnauthorized)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	a.Require(whoAmI(&got)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatorRejectsDeletedAccounts(t *testing.T) {
	a, _ := newTestAuthenticator(stubUsers{})
	var got string

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	a.Require(whoAmI(&got)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, got)
}

func TestAuthenticatorOptional(t *testing.T) {
	a, failed := newTestAuthenticator(stubUsers{"user-1": {ID: "user-1"}})

	var got string
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	a.Optional(whoAmI(&got)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, got)
	assert.NoError(t, *failed)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer good")
	rec = httptest.NewRecorder()
	a.Optional(whoAmI(&got)).ServeHTTP(rec, req)
	assert.Equal(t, "user-1", got)
}

func TestIPRateLimiterExpiresVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Minute, 1, time.Minute).(*ipRateLimiter)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.WithNowFunc(func() time.Time { return now })

	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))

	now = now.Add(2 * time.Minute)
	limiter.Allow("c")
	limiter.mu.Lock()
	_, kept := limiter.visitors["a"]
	limiter.mu.Unlock()
	assert.False(t, kept)
}

func TestLimitUsesClientAddress(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)
	var rejected int
	handler := Limit(limiter, "auth", func(w http.ResponseWriter, _ *http.Request, err error) {
		require.ErrorIs(t, err, ErrTooManyRequests)
		rejected++
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	call := func(remote, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1000", ""))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:2000", ""))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:3000", "198.51.100.4"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:4000", "203.0.113.9, 10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1000", ""))
	assert.Equal(t, 3, rejected)
}
