// Package postgres implements a Postgres-backed storage.Repository using
// pgx v5. Loads go through the COPY protocol inside a single transaction,
// which is the fastest bulk path pgx offers and keeps replace-mode loads
// atomic.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"gamedata/internal/storage"
	"gamedata/internal/storage/postgres/ddl"
)

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository constructs a Repository and returns a close function for
// cleanup. The pool is pinged once so a bad DSN fails here rather than on
// the first load.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}

	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// EnsureSchema creates the destination table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	def, err := ddl.FromSchema(r.cfg.Table, r.cfg.Columns)
	if err != nil {
		return err
	}
	return ddl.EnsureTable(ctx, r, def)
}

// Load writes rows via COPY inside one transaction. storage.ModeReplace
// clears the table first, in the same transaction, so a failed load leaves
// prior content intact. Returns the number of rows written.
func (r *Repository) Load(ctx context.Context, columns []string, rows [][]any, mode storage.Mode) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: load: columns must not be empty")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if mode == storage.ModeReplace {
		if _, err := tx.Exec(ctx, "DELETE FROM "+pgFQN(r.cfg.Table)); err != nil {
			return 0, fmt.Errorf("postgres: clear table: %w", err)
		}
	}

	n, err := tx.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return 0, fmt.Errorf("postgres: copy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// Count returns the number of rows in the destination table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := "SELECT COUNT(*) FROM " + pgFQN(r.cfg.Table)
	if err := r.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) on the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sqlText); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.games_raw" to
// "public"."games_raw". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, pgIdent(p))
		}
	}
	return strings.Join(out, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			id = append(id, p)
		}
	}
	return id
}
