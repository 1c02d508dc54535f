// Package mysql implements a MySQL-backed storage.Repository using
// database/sql and go-sql-driver. Loads run as multi-row INSERTs inside a
// single transaction, batched so statements stay under the server's packet
// limit.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"gamedata/internal/storage"
	"gamedata/internal/storage/mysql/ddl"
)

// insertBatchSize caps rows per INSERT statement. 500 rows of the canonical
// width stays well under the default max_allowed_packet.
const insertBatchSize = 500

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// Open validates the DSN with the driver's parser and opens a handle without
// pinging it.
func Open(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	if _, err := driver.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("mysql: parse DSN: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	return db, nil
}

// New wraps an existing handle.
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
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}

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

// Load writes rows inside one transaction as batched multi-row INSERTs.
// storage.ModeReplace clears the table first, in the same transaction, so a
// failed load leaves prior content intact. Returns the number of rows
// written.
func (r *Repository) Load(ctx context.Context, columns []string, rows [][]any, mode storage.Mode) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: load: columns must not be empty")
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mysql: load: row length %d != columns length %d", len(row), len(columns))
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}

	if mode == storage.ModeReplace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+myFQN(r.cfg.Table)); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: clear table: %w", err)
		}
	}

	written, err := storage.InBatches(rows, insertBatchSize, func(batch [][]any) (int64, error) {
		stmt, args := buildInsert(r.cfg.Table, columns, batch)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	})
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return written, nil
}

// Count returns the number of rows in the destination table.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	q := "SELECT COUNT(*) FROM " + myFQN(r.cfg.Table)
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("mysql: count: %w", err)
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
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// buildInsert renders one multi-row INSERT and its flattened, bind-adapted
// argument list for the given batch.
func buildInsert(table string, columns []string, batch [][]any) (string, []any) {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myIdent(c)
		marks[i] = "?"
	}
	tuple := "(" + strings.Join(marks, ", ") + ")"

	tuples := make([]string, len(batch))
	args := make([]any, 0, len(batch)*len(columns))
	for i, row := range batch {
		tuples[i] = tuple
		args = append(args, bindValues(row)...)
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		myFQN(table),
		strings.Join(quoted, ", "),
		strings.Join(tuples, ", "),
	)
	return stmt, args
}

// bindValues adapts canonical values for the driver: dates are bound as
// ISO-8601 day strings so DATE columns never see a time-of-day part;
// everything else passes through, nil staying NULL.
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

// myIdent backtick-quotes a single identifier segment.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// myFQN quotes a possibly database-qualified name per segment.
func myFQN(name string) string {
	parts := strings.Split(name, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, myIdent(p))
		}
	}
	return strings.Join(out, ".")
}
