package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrFileNotFound = errors.New("file not found")

// FileStorage holds photo blobs by key. Keys look like
// "face-reference/<user id>/<file>" or "check-in-photo/<attendance id>/<file>".
type FileStorage interface {
	// Upload writes the blob under key and returns the key it was stored at.
	Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error)

	// Download returns ErrFileNotFound for unknown keys.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete is a no-op for unknown keys.
	Delete(ctx context.Context, key string) error

	// GetURL returns a public URL (local) or a presigned one valid for expiry (S3).
	GetURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	Exists(ctx context.Context, key string) (bool, error)
}
