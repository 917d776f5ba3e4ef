package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidKey = errors.New("invalid storage key")
	ErrNotFound   = errors.New("stored object not found")
)

// FileStorage keeps uploaded files under slash-separated keys such as "imports/attendance/<uuid>.xlsx".
type FileStorage interface {
	// Save stores the content under key and returns the normalized key.
	Save(ctx context.Context, key string, content io.Reader) (string, error)

	// Open returns a reader for a stored object.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a stored object; a missing object is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public address of a stored object.
	URL(key string) string
}
