// Package blob holds the object store backends for case documents.
package blob

import (
	"context"
	"io"
	"time"
)

// Store keeps document bytes. Missing objects are reported as
// sentinel.ErrNotFound.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	Presign(ctx context.Context, key string, expiry time.Duration) (string, error)
}
