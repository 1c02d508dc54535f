// Package file implements filesystem-backed data sources and the directory
// discovery the pipeline starts from.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a data source that opens one file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local data source bound to the provided path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Name returns the underlying path.
func (l *Local) Name() string { return l.path }

// Open opens the configured path for reading.
//
// Behavior:
//   - If the context is already canceled or past its deadline, Open returns
//     the context error without touching the filesystem.
//   - Filesystem errors are wrapped with the path while still permitting
//     errors.Is/As checks (e.g., errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
