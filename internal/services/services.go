// Package services implements the write paths of the API: validation, ownership checks,
// persistence and media side effects.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// TokenManager issues and rotates session tokens.
type TokenManager interface {
	Issue(ctx context.Context, user models.User) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.User, models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// loadError maps a repository lookup failure to an API error.
func loadError(err error, notFound string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Internal("failed to load resource", err)
}

// writeError maps a repository write failure to an API error.
func writeError(err error, conflict, op string) error {
	switch {
	case errors.Is(err, repositories.ErrConflict):
		return apperr.Conflict(conflict)
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.NotFound("referenced resource not found")
	}
	return apperr.Internal("failed to "+op, err)
}

// dropAssets deletes replaced or orphaned media after the record change has been committed.
// Failures leave an orphaned object behind and are only logged.
func dropAssets(ctx context.Context, d media.Delegate, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := d.Delete(ctx, ref); err != nil {
			logging.FromContext(ctx).Warn("orphaned media asset", zap.String("ref", ref), zap.Error(err))
		}
	}
}

type clock struct {
	now func() time.Time
}

func (c clock) timestamp() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().UTC()
}
