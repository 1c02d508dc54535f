// Package storage defines the backend-agnostic contract for persisting
// canonical game rows and a registry that maps a configured kind ("sqlite",
// "postgres", ...) to a concrete backend. Backends register themselves in
// init; importing internal/storage/all pulls the whole set in.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Mode selects what happens to rows already present in the target table.
type Mode int

const (
	// ModeReplace clears the target table in the same transaction as the
	// load, so a failed load never leaves the table half-replaced.
	ModeReplace Mode = iota
	// ModeAppend leaves existing rows in place.
	ModeAppend
)

// String returns the configuration spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeAppend:
		return "append"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps an if_exists configuration value to a Mode. The empty
// string means the default, replace.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "replace":
		return ModeReplace, nil
	case "append":
		return ModeAppend, nil
	default:
		return 0, fmt.Errorf("unsupported if_exists=%q (want replace or append)", s)
	}
}

// Repository is the contract the ingest pipeline loads through.
//
// Load must be atomic: either every row lands (after clearing prior content
// in ModeReplace) or the table is untouched.
type Repository interface {
	// EnsureSchema creates the destination table when it does not exist.
	EnsureSchema(ctx context.Context) error

	// Load writes rows, each aligned to the columns order, and returns the
	// number written.
	Load(ctx context.Context, columns []string, rows [][]any, mode Mode) (int64, error)

	// Count returns the number of rows currently in the destination table.
	// The pipeline's verify step compares it against the load result.
	Count(ctx context.Context) (int64, error)

	// Close releases underlying connections. Safe to call once after New.
	Close()
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind    string   // registered backend name, e.g. "sqlite"
	DSN     string   // connection string or file path, backend-interpreted
	Table   string   // destination table name, optionally schema-qualified
	Columns []string // ordered destination columns
}

// Factory constructs a Repository from a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a storage kind. Backends
// call it from init; tests may re-register to stub a kind out.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind via the registered factory.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered storage kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
