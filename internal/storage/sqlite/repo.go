// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql and the modernc driver. Loads run as prepared INSERTs inside
// a single transaction; SQLite has no dedicated bulk-load API like Postgres
// COPY, but one transaction keeps moderate volumes fast and atomic.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // cgo-free SQLite driver

	"gamedata/internal/storage"
	"gamedata/internal/storage/sqlite/ddl"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// Open opens a SQLite handle for the given DSN without pinging it. For plain
// file paths the parent directory is created first, so a default like
// "data/master.db" works on the first run. In-memory DSNs are pinned to a
// single pool connection: each connection would otherwise get its own
// private database.
func Open(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	if dir := dirOf(dsn); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// dirOf returns the parent directory for plain-path DSNs, "" for in-memory
// or URI-style DSNs.
func dirOf(dsn string) string {
	if isMemory(dsn) || strings.HasPrefix(dsn, "file:") {
		return ""
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// New wraps an existing handle. Tests use it with an in-memory database.
func New(db *sql.DB, cfg Config) *Repository {
	return &Repository{db: db, cfg: cfg}
}

// NewRepository opens a connection for cfg.DSN, verifies it with a short
// ping, and returns the Repository plus a close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	db, err := Open(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// Enable foreign keys; harmless when the pragma is a no-op.
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	closeFn := func() { db.Close() }
	return New(db, cfg), closeFn, nil
}

// EnsureSchema creates the destination table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	def, err := ddl.FromSchema(r.cfg.Table, r.cfg.Columns)
	if err != nil {
		return err
	}
	return ddl.EnsureTable(ctx, r, def)
}

// Load writes rows inside one transaction. storage.ModeReplace clears the
// table first, in the same transaction, so a failed load leaves prior
// content intact. Returns the number of rows written.
func (r *Repository) Load(ctx context.Context, columns []string, rows [][]any, mode storage.Mode) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: load: columns must not be empty")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}

	if mode == storage.ModeReplace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+sqlFQN(r.cfg.Table)); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: clear table: %w", err)
		}
	}

	placeholders := make([]string, len(columns))
	quoted := make([]string, len(columns))
	for i, c := range columns {
		placeholders[i] = "?"
		quoted[i] = sqlIdent(c)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		sqlFQN(r.cfg.Table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var written int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: load: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, bindValues(row)...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return written, nil
}

// Count returns the number of rows in the destination table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := "SELECT COUNT(*) FROM " + sqlFQN(r.cfg.Table)
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) on the underlying
// connection.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// bindValues adapts canonical values for the driver: dates are stored as
// ISO-8601 day strings; everything else passes through, nil staying NULL.
func bindValues(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			out[i] = t.Format("2006-01-02")
			continue
		}
		out[i] = v
	}
	return out
}

// sqlIdent double-quotes a single identifier segment.
func sqlIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// sqlFQN quotes a possibly dotted table name per segment.
func sqlFQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, sqlIdent(p))
		}
	}
	return strings.Join(out, ".")
}
