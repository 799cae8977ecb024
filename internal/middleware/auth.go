package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// AccessTokenCookie is the cookie holding the access token.
const AccessTokenCookie = "accessToken"

type userKey struct{}

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	Authenticate(token string) (auth.AccessClaims, error)
}

// UserFinder loads the account named by a verified token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// ErrorWriter renders an error response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey{}).(models.User)
	return user, ok
}

// Authenticator resolves the caller from the access token cookie or bearer header.
type Authenticator struct {
	tokens TokenVerifier
	users  UserFinder
	fail   ErrorWriter
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens TokenVerifier, users UserFinder, fail ErrorWriter) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, fail: fail}
}

// Require rejects requests without a valid session with 401.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		if token == "" {
			a.fail(w, r, apperr.Unauthorized("unauthorized request"))
			return
		}
		user, err := a.resolve(r.Context(), token)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(a.attach(r.Context(), user)))
	})
}

// Optional attaches the caller when a valid session is presented and continues anonymously
// otherwise.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, err := a.resolve(r.Context(), token)
		if err != nil {
			logging.FromContext(r.Context()).Debug("ignoring invalid session", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(a.attach(r.Context(), user)))
	})
}

func (a *Authenticator) resolve(ctx context.Context, token string) (models.User, error) {
	claims, err := a.tokens.Authenticate(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := a.users.FindByID(ctx, claims.ID)
	if err != nil {
		return models.User{}, apperr.Unauthorized("invalid access token")
	}
	return user, nil
}

func (a *Authenticator) attach(ctx context.Context, user models.User) context.Context {
	ctx = WithUser(ctx, user)
	return logging.WithLogger(ctx, logging.FromContext(ctx).With(zap.String("user_id", user.ID)))
}

func accessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
