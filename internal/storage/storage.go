package storage

import (
	"context"
	"io"
)

// ProgressFunc receives the number of bytes written so far.
type ProgressFunc func(written int64)

// BlobStore persists uploaded files and serves them back by URL.
type BlobStore interface {
	// Upload writes the reader's contents under path and returns the public
	// URL of the stored blob. progress may be nil.
	Upload(ctx context.Context, r io.Reader, path string, progress ProgressFunc) (string, error)

	// Delete removes a previously stored blob. Deleting a missing blob is
	// not an error.
	Delete(ctx context.Context, path string) error
}
