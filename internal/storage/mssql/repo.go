// Package mssql implements a SQL Server-backed storage.Repository using the
// go-mssqldb bulk copy API. Loads run as one bulk insert inside a single
// transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"gamedata/internal/storage"
	"gamedata/internal/storage/mssql/ddl"
)

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a close function for
// cleanup. The DSN is validated with the driver's parser so obvious mistakes
// fail before any connection attempt.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql: parse DSN: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w", err)
	}

	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// EnsureSchema creates the destination table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	def, err := ddl.FromSchema(r.cfg.Table, r.cfg.Columns)
	if err != nil {
		return err
	}
	return ddl.EnsureTable(ctx, r, def)
}

// Load writes rows with one bulk copy inside a transaction.
// storage.ModeReplace clears the table first, in the same transaction, so a
// failed load leaves prior content intact. Returns the number of rows
// written.
func (r *Repository) Load(ctx context.Context, columns []string, rows [][]any, mode storage.Mode) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mssql: load: columns must not be empty")
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mssql: load: row length %d != columns length %d", len(row), len(columns))
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	if mode == storage.ModeReplace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+msFQN(r.cfg.Table)); err != nil {
			rollback()
			return 0, fmt.Errorf("mssql: clear table: %w", err)
		}
	}

	// Replace with an empty batch still clears the table.
	if len(rows) == 0 {
		if err := tx.Commit(); err != nil {
			return 0, fmt.Errorf("mssql: commit: %w", err)
		}
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(r.cfg.Table, mssql.BulkOptions{}, columns...))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			rollback()
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx) // flush
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		rollback()
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// Count returns the number of rows in the destination table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := "SELECT COUNT(*) FROM " + msFQN(r.cfg.Table)
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("mssql: count: %w", err)
	}
	return n, nil
}

// Exec executes an arbitrary SQL statement (typically DDL) against the pool.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// msIdent safely quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a possibly schema-qualified name like "dbo.games_raw" to
// "[dbo].[games_raw]". If no dot is present, returns a single quoted ident.
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, msIdent(p))
		}
	}
	return strings.Join(out, ".")
}
