package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/metrics"
	"github.com/vidtube/backend/internal/storage"
)

// Prober measures the duration of a media file.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// UploaderConfig tunes timeouts, retries and the circuit breaker.
type UploaderConfig struct {
	// Timeout bounds each individual store call.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	RetryDelay time.Duration

	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultUploaderConfig returns production defaults.
func DefaultUploaderConfig() UploaderConfig {
	return UploaderConfig{
		Timeout:         2 * time.Minute,
		MaxRetries:      3,
		RetryDelay:      500 * time.Millisecond,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// Uploader is the production Delegate. Calls to the store pass through a circuit breaker
// and are retried with exponential backoff.
type Uploader struct {
	backend storage.Backend
	prober  Prober
	cfg     UploaderConfig
	breaker *gobreaker.CircuitBreaker[string]
}

// NewUploader wires a Delegate over backend. prober may be nil, in which case durations are 0.
func NewUploader(backend storage.Backend, prober Prober, cfg UploaderConfig) *Uploader {
	defaults := DefaultUploaderConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = defaults.BreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = defaults.BreakerCooldown
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "media-store",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.MediaBreakerState.Set(1)
			} else {
				metrics.MediaBreakerState.Set(0)
			}
			zap.L().Warn("media breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Uploader{backend: backend, prober: prober, cfg: cfg, breaker: breaker}
}

// Upload sends the file at localPath to the store and removes the local copy afterwards.
func (u *Uploader) Upload(ctx context.Context, localPath string) (asset Asset, err error) {
	ctx, span := logging.StartSpan(ctx, "media.upload")
	start := time.Now()
	defer func() {
		discardLocal(ctx, localPath)
		observe("upload", start, err)
		span.End(err)
	}()

	if strings.TrimSpace(localPath) == "" {
		return Asset{}, apperr.Validation("missing upload file")
	}

	contentType, err := sniff(localPath)
	if err != nil {
		return Asset{}, apperr.Validation("upload file is not readable")
	}

	key := objectKey(contentType, localPath)

	var duration float64
	if strings.HasPrefix(contentType, "video/") && u.prober != nil {
		d, probeErr := u.prober.Duration(ctx, localPath)
		if probeErr != nil {
			logging.FromContext(ctx).Warn("media duration unavailable", zap.Error(probeErr))
		} else {
			duration = d
		}
	}

	url, err := u.withRetry(ctx, func(callCtx context.Context) (string, error) {
		f, err := os.Open(localPath)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		defer f.Close()
		return u.backend.Save(callCtx, key, f, contentType)
	})
	if err != nil {
		return Asset{}, apperr.Upstream("failed to upload media", err)
	}

	return Asset{URL: url, Ref: key, DurationSeconds: duration, ContentType: contentType}, nil
}

// Delete removes a previously uploaded asset. An empty ref is a no-op.
func (u *Uploader) Delete(ctx context.Context, ref string) (err error) {
	if strings.TrimSpace(ref) == "" {
		return nil
	}

	start := time.Now()
	defer func() { observe("delete", start, err) }()

	_, err = u.withRetry(ctx, func(callCtx context.Context) (string, error) {
		return "", u.backend.Delete(callCtx, ref)
	})
	if err != nil {
		return apperr.Upstream("failed to delete media", err)
	}
	return nil
}

func (u *Uploader) withRetry(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = u.cfg.RetryDelay
	policy.MaxElapsedTime = 0

	attempt := 0
	op := func() (string, error) {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
		defer cancel()

		out, err := u.breaker.Execute(func() (string, error) {
			return call(callCtx)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", backoff.Permanent(err)
		}
		if err != nil {
			logging.FromContext(ctx).Debug("media store call failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		return out, err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(u.cfg.MaxRetries)), ctx)
	return backoff.RetryWithData(op, b)
}

func sniff(localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

func objectKey(contentType, localPath string) string {
	folder := "files"
	switch {
	case strings.HasPrefix(contentType, "video/"):
		folder = "videos"
	case strings.HasPrefix(contentType, "image/"):
		folder = "images"
	}
	return path.Join(folder, uuid.NewString()+strings.ToLower(filepath.Ext(localPath)))
}

func observe(op string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.MediaOperations.WithLabelValues(op, outcome).Inc()
	metrics.MediaDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func discardLocal(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.FromContext(ctx).Warn("remove temp upload", zap.String("path", p), zap.Error(err))
		}
	}
}

var _ Delegate = (*Uploader)(nil)
