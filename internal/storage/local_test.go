package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "http://localhost:8080/media/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "videos/clip.mp4", strings.NewReader("payload"), "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/videos/clip.mp4", url)

	data, err := os.ReadFile(filepath.Join(root, "videos", "clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete(context.Background(), "videos/clip.mp4"))
	_, err = os.Stat(filepath.Join(root, "videos", "clip.mp4"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), "videos/clip.mp4"))
}

func TestLocalStorageRejectsBadKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = store.Save(context.Background(), "../outside.txt", strings.NewReader("x"), "")
	assert.Error(t, err)
}

func TestLocalStorageWithoutBaseURLReturnsKey(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "/images/a.png", strings.NewReader("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "images/a.png", url)
}
