package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidtube/backend/internal/apperr"
)

type flakyBackend struct {
	mu        sync.Mutex
	failures  int
	saves     int
	deleted   []string
	deleteErr error
	lastType  string
}

func (b *flakyBackend) Save(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves++
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	if b.failures > 0 {
		b.failures--
		return "", errors.New("transient store failure")
	}
	b.lastType = contentType
	return "https://cdn.example/" + key, nil
}

func (b *flakyBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deleted = append(b.deleted, key)
	return nil
}

type fixedProber struct {
	seconds float64
	err     error
}

func (p fixedProber) Duration(context.Context, string) (float64, error) {
	return p.seconds, p.err
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func fastConfig(retries int) UploaderConfig {
	return UploaderConfig{Timeout: time.Second, MaxRetries: retries, RetryDelay: time.Millisecond, BreakerFailures: 100}
}

func TestUploaderRetriesTransientFailures(t *testing.T) {
	backend := &flakyBackend{failures: 2}
	u := NewUploader(backend, nil, fastConfig(3))

	local := writeTemp(t, "avatar.PNG", pngHeader)
	asset, err := u.Upload(context.Background(), local)
	require.NoError(t, err)

	assert.Equal(t, 3, backend.saves)
	assert.Equal(t, "image/png", asset.ContentType)
	assert.Equal(t, "image/png", backend.lastType)
	assert.Regexp(t, `^images/[0-9a-f-]+\.png$`, asset.Ref)
	assert.Equal(t, "https://cdn.example/"+asset.Ref, asset.URL)

	_, statErr := os.Stat(local)
	assert.True(t, os.IsNotExist(statErr), "temp file must be removed")
}

func TestUploaderGivesUpAndRemovesTempFile(t *testing.T) {
	backend := &flakyBackend{failures: 10}
	u := NewUploader(backend, nil, fastConfig(1))

	local := writeTemp(t, "avatar.png", pngHeader)
	_, err := u.Upload(context.Background(), local)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, 2, backend.saves)

	_, statErr := os.Stat(local)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUploaderBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	backend := &flakyBackend{failures: 100}
	cfg := fastConfig(0)
	cfg.BreakerFailures = 2
	cfg.BreakerCooldown = time.Hour
	u := NewUploader(backend, nil, cfg)

	for i := 0; i < 2; i++ {
		_, err := u.Upload(context.Background(), writeTemp(t, "a.png", pngHeader))
		require.Error(t, err)
	}
	saves := backend.saves

	_, err := u.Upload(context.Background(), writeTemp(t, "a.png", pngHeader))
	require.Error(t, err)
	assert.Equal(t, saves, backend.saves, "open breaker must short-circuit the store")
}

func TestUploaderReadsVideoDuration(t *testing.T) {
	backend := &flakyBackend{}
	u := NewUploader(backend, fixedProber{seconds: 12.5}, fastConfig(0))

	mp4 := append([]byte("\x00\x00\x00\x18ftypmp42"), make([]byte, 16)...)
	asset, err := u.Upload(context.Background(), writeTemp(t, "clip.mp4", mp4))
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", asset.ContentType)
	assert.Equal(t, 12.5, asset.DurationSeconds)
	assert.Regexp(t, `^videos/`, asset.Ref)
}

func TestUploaderDurationFailureKeepsUpload(t *testing.T) {
	u := NewUploader(&flakyBackend{}, fixedProber{err: errors.New("ffprobe missing")}, fastConfig(0))

	mp4 := append([]byte("\x00\x00\x00\x18ftypmp42"), make([]byte, 16)...)
	asset, err := u.Upload(context.Background(), writeTemp(t, "clip.mp4", mp4))
	require.NoError(t, err)
	assert.Zero(t, asset.DurationSeconds)
}

func TestUploaderRejectsMissingFile(t *testing.T) {
	u := NewUploader(&flakyBackend{}, nil, fastConfig(0))

	_, err := u.Upload(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = u.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUploaderDelete(t *testing.T) {
	backend := &flakyBackend{}
	u := NewUploader(backend, nil, fastConfig(0))

	require.NoError(t, u.Delete(context.Background(), ""))
	require.NoError(t, u.Delete(context.Background(), "images/a.png"))
	assert.Equal(t, []string{"images/a.png"}, backend.deleted)

	backend.deleteErr = errors.New("denied")
	assert.ErrorIs(t, u.Delete(context.Background(), "images/b.png"), apperr.ErrUpstream)
}

func TestUploadAllCompensatesOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := NewMockDelegate(ctrl)

	third := writeTemp(t, "third.png", pngHeader)
	first := Asset{URL: "https://cdn.example/videos/1.mp4", Ref: "videos/1.mp4"}

	gomock.InOrder(
		delegate.EXPECT().Upload(gomock.Any(), "first.mp4").Return(first, nil),
		delegate.EXPECT().Upload(gomock.Any(), "second.png").Return(Asset{}, apperr.Upstream("failed to upload media", errors.New("boom"))),
		delegate.EXPECT().Delete(gomock.Any(), "videos/1.mp4").Return(nil),
	)

	assets, err := UploadAll(context.Background(), delegate, "first.mp4", "second.png", third)
	require.Error(t, err)
	assert.Nil(t, assets)
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	_, statErr := os.Stat(third)
	assert.True(t, os.IsNotExist(statErr), "files after the failure are discarded")
}

func TestUploadAllSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	delegate := NewMockDelegate(ctrl)

	delegate.EXPECT().Upload(gomock.Any(), "a").Return(Asset{Ref: "a"}, nil)
	delegate.EXPECT().Upload(gomock.Any(), "b").Return(Asset{Ref: "b"}, nil)

	assets, err := UploadAll(context.Background(), delegate, "a", "b")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "b", assets[1].Ref)
}

func TestFFProbeDuration(t *testing.T) {
	probe := NewFFProbe("ffprobe", time.Second)
	probe.Run = func(ctx context.Context, binary string, args ...string) ([]byte, error) {
		assert.Equal(t, "ffprobe", binary)
		assert.Equal(t, "/tmp/clip.mp4", args[len(args)-1])
		return []byte(`{"format":{"duration":"63.250000"}}`), nil
	}

	d, err := probe.Duration(context.Background(), "/tmp/clip.mp4")
	require.NoError(t, err)
	assert.InDelta(t, 63.25, d, 0.0001)
}

func TestFFProbeDurationErrors(t *testing.T) {
	probe := NewFFProbe("", time.Second)
	probe.Run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{"format":{}}`), nil
	}
	_, err := probe.Duration(context.Background(), "clip.mp4")
	assert.Error(t, err)

	probe.Run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}
	_, err = probe.Duration(context.Background(), "clip.mp4")
	assert.Error(t, err)

	var nilProbe *FFProbe
	_, err = nilProbe.Duration(context.Background(), "clip.mp4")
	assert.ErrorIs(t, err, ErrProberUnavailable)
}
