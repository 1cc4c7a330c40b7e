package photostore

import (
	"context"
	"io"
)

// FileStore keeps image files in managed storage. Paths returned by Import and
// Save are stable and are what the photos table records.
type FileStore interface {
	Import(ctx context.Context, sourceURI string) (path string, err error)
	Save(ctx context.Context, filename string, r io.Reader) (path string, err error)
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
	// Delete removes the file at path. A file that is already gone is not an
	// error.
	Delete(ctx context.Context, path string) error
}
