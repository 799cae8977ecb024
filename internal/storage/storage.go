// Package storage persists media objects in a remote or local object store.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrEmptyKey is returned when an object key is blank after normalisation.
var ErrEmptyKey = errors.New("storage: empty key")

// Backend stores and removes objects addressed by key.
type Backend interface {
	// Save writes r under key and returns the public URL of the object.
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
