// Package media uploads user-supplied files to the object store and removes them again.
package media

//go:generate mockgen -source=delegate.go -destination=mock_delegate.go -package=media

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/logging"
)

// Asset describes an uploaded object.
type Asset struct {
	URL             string
	Ref             string
	DurationSeconds float64
	ContentType     string
}

// Delegate moves local files to remote storage. Upload always removes the local file,
// whether or not the upload succeeded.
type Delegate interface {
	Upload(ctx context.Context, localPath string) (Asset, error)
	Delete(ctx context.Context, ref string) error
}

// UploadAll uploads each path in order. When one fails, the assets already uploaded are
// deleted and the remaining local files are discarded before the error is returned.
func UploadAll(ctx context.Context, d Delegate, paths ...string) ([]Asset, error) {
	assets := make([]Asset, 0, len(paths))
	for i, p := range paths {
		asset, err := d.Upload(ctx, p)
		if err != nil {
			Compensate(ctx, d, assets...)
			discardLocal(ctx, paths[i+1:]...)
			return nil, fmt.Errorf("upload %d of %d: %w", i+1, len(paths), err)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// Compensate deletes previously uploaded assets. Failures are logged, not returned, since
// the caller is already unwinding from an earlier error.
func Compensate(ctx context.Context, d Delegate, assets ...Asset) {
	logger := logging.FromContext(ctx)
	var errs []error
	for _, a := range assets {
		if a.Ref == "" {
			continue
		}
		if err := d.Delete(ctx, a.Ref); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("media compensation incomplete", zap.Error(err))
	}
}
