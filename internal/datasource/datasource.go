// Package datasource abstracts where raw source bytes come from: local
// files, HTTP endpoints, or a dataset provider's cache.
package datasource

import (
	"context"
	"io"
)

// Source is one raw input. Open may be called more than once; each call
// returns an independent reader the caller must close.
type Source interface {
	// Name identifies the source in logs and errors (a path or URL).
	Name() string

	Open(ctx context.Context) (io.ReadCloser, error)
}
