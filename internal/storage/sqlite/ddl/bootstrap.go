package ddl

import (
	"context"

	gddl "gamedata/internal/ddl"
)

// Execer runs a DDL statement. *sqlite.Repository satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// EnsureTable creates the target table if it does not exist. Idempotent: the
// statement carries IF NOT EXISTS.
func EnsureTable(ctx context.Context, ex Execer, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return ex.Exec(ctx, sql)
}
