package ddl

import (
	"context"

	gddl "gamedata/internal/ddl"
)

// Execer runs a DDL statement. *mssql.Repository satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// EnsureTable creates the target SQL Server table if it does not already
// exist. Idempotent: the script is guarded by an OBJECT_ID check.
func EnsureTable(ctx context.Context, ex Execer, def gddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	return ex.Exec(ctx, sql)
}
