// Package storage provides key/value blob persistence for catalog data.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no blob exists under a key.
var ErrNotFound = errors.New("blob not found")

// BlobStore reads and writes whole blobs by key.
type BlobStore interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the blob stored under key.
	Put(ctx context.Context, key string, data []byte) error
}
