package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrMissingRefreshToken indicates the client did not present a refresh token at all.
	ErrMissingRefreshToken = apperr.Validation("refresh token is required")
	// ErrInvalidToken covers bad signatures, wrong algorithms, expiry and unknown subjects.
	ErrInvalidToken = apperr.Unauthorized("invalid or expired token")
	// ErrStaleRefreshToken indicates the refresh token was rotated or revoked.
	ErrStaleRefreshToken = apperr.Unauthorized("refresh token is expired or used")
)

// SessionStore persists the single active refresh token of each user.
type SessionStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
}

// Config carries the signing secrets and lifetimes of issued tokens.
type Config struct {
	AccessSecret  string
	AccessTTL     time.Duration
	RefreshSecret string
	RefreshTTL    time.Duration
}

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token.
type RefreshClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Manager issues, verifies and rotates signed session tokens.
type Manager struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration

	store SessionStore
	now   func() time.Time
}

// NewManager constructs a Manager. Both secrets must be set.
func NewManager(cfg Config, store SessionStore) *Manager {
	if store == nil {
		panic("auth: session store must not be nil")
	}
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		panic("auth: token secrets must not be empty")
	}
	return &Manager{
		accessSecret:  []byte(cfg.AccessSecret),
		accessTTL:     cfg.AccessTTL,
		refreshSecret: []byte(cfg.RefreshSecret),
		refreshTTL:    cfg.RefreshTTL,
		store:         store,
		now:           time.Now,
	}
}

// Issue signs a new access/refresh pair for the user and persists the refresh token,
// replacing whichever one was active before.
func (m *Manager) Issue(ctx context.Context, user models.User) (models.SessionTokens, error) {
	if user.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now().UTC()
	tokens := models.SessionTokens{
		AccessExpiresAt:  now.Add(m.accessTTL),
		RefreshExpiresAt: now.Add(m.refreshTTL),
	}

	var err error
	tokens.AccessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		RegisteredClaims: m.registered(user.ID, now, tokens.AccessExpiresAt),
	}).SignedString(m.accessSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	tokens.RefreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		ID:               user.ID,
		RegisteredClaims: m.registered(user.ID, now, tokens.RefreshExpiresAt),
	}).SignedString(m.refreshSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := m.store.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, fmt.Errorf("store refresh token: %w", err)
	}

	return tokens, nil
}

func (m *Manager) registered(subject string, now, expires time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
}

// Authenticate verifies an access token and returns its claims.
func (m *Manager) Authenticate(token string) (AccessClaims, error) {
	var claims AccessClaims
	if err := m.parse(token, m.accessSecret, &claims); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new pair. The token must verify and must equal
// the one stored for its user; anything else is treated as stale.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.User, models.SessionTokens, error) {
	if refreshToken == "" {
		return models.User{}, models.SessionTokens{}, ErrMissingRefreshToken
	}

	var claims RefreshClaims
	if err := m.parse(refreshToken, m.refreshSecret, &claims); err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	user, err := m.store.FindByID(ctx, claims.ID)
	if err != nil {
		return models.User{}, models.SessionTokens{}, ErrInvalidToken
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return models.User{}, models.SessionTokens{}, ErrStaleRefreshToken
	}

	tokens, err := m.Issue(ctx, user)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}
	user.RefreshToken = tokens.RefreshToken
	return user, tokens, nil
}

// Revoke clears the user's stored refresh token.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := m.store.SetRefreshToken(ctx, userID, ""); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (m *Manager) parse(token string, secret []byte, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ErrInvalidToken
	}
	return nil
}
